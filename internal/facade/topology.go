package facade

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names a service endpoint used by a facade view.
type Backend struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Topology lists the backends behind each facade view.
type Topology struct {
	Dashboard []Backend `yaml:"dashboard"`
	Health    []Backend `yaml:"health"`
}

// ServiceURLs are the base URLs of the default backends.
type ServiceURLs struct {
	User    string
	Titanic string
	OAuth   string
}

func DefaultTopology(urls ServiceURLs) Topology {
	return Topology{
		Dashboard: []Backend{
			{Name: "user", URL: join(urls.User, "/api/user/profile")},
			{Name: "titanic", URL: join(urls.Titanic, "/passengers/top10")},
		},
		Health: []Backend{
			{Name: "oauth-service", URL: join(urls.OAuth, "/actuator/health")},
			{Name: "user-service", URL: join(urls.User, "/actuator/health")},
			{Name: "titanic-service", URL: join(urls.Titanic, "/health")},
		},
	}
}

// LoadTopology reads a YAML topology file. Views absent from the file keep
// the entries from def. An empty path returns def unchanged.
func LoadTopology(path string, def Topology) (Topology, error) {
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("read facade config: %w", err)
	}

	var file Topology
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Topology{}, fmt.Errorf("parse facade config: %w", err)
	}

	out := def
	if len(file.Dashboard) > 0 {
		out.Dashboard = file.Dashboard
	}
	if len(file.Health) > 0 {
		out.Health = file.Health
	}
	if err := out.validate(); err != nil {
		return Topology{}, err
	}
	return out, nil
}

func (t Topology) validate() error {
	for view, list := range map[string][]Backend{"dashboard": t.Dashboard, "health": t.Health} {
		seen := map[string]bool{}
		for _, b := range list {
			if b.Name == "" || b.URL == "" {
				return fmt.Errorf("facade %s backend requires name and url", view)
			}
			if seen[b.Name] {
				return fmt.Errorf("facade %s backend %q listed twice", view, b.Name)
			}
			seen[b.Name] = true
		}
	}
	return nil
}

func join(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
