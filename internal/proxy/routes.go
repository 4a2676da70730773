package proxy

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route forwards every path under Prefix to Target.
type Route struct {
	Prefix string `yaml:"prefix"`
	Target string `yaml:"target"`
}

// ServiceURLs are the base URLs of the proxied backends.
type ServiceURLs struct {
	ML   string
	User string
}

func DefaultRoutes(urls ServiceURLs) []Route {
	routes := make([]Route, 0, 9)
	for _, prefix := range []string{
		"/api/titanic/",
		"/api/ml/",
		"/api/daily-emotion/",
		"/nlp/",
		"/samsung/",
		"/korean/",
		"/us_map/",
		"/seoul_map/",
	} {
		routes = append(routes, Route{Prefix: prefix, Target: urls.ML})
	}
	return append(routes, Route{Prefix: "/api/user/", Target: urls.User})
}

type routeFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes reads a YAML route table that replaces def entirely. An empty
// path returns def unchanged.
func LoadRoutes(path string, def []Route) ([]Route, error) {
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proxy config: %w", err)
	}

	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse proxy config: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("proxy config %s lists no routes", path)
	}
	return file.Routes, nil
}

func (r Route) validate() (*url.URL, error) {
	if !strings.HasPrefix(r.Prefix, "/") {
		return nil, fmt.Errorf("proxy route prefix %q must start with /", r.Prefix)
	}
	target, err := url.Parse(r.Target)
	if err != nil {
		return nil, fmt.Errorf("proxy route %s: %w", r.Prefix, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy route %s: target %q needs scheme and host", r.Prefix, r.Target)
	}
	return target, nil
}
