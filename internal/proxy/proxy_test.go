package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	hits  atomic.Int32
	path  atomic.Value
	query atomic.Value
}

func fakeBackend(t *testing.T, name string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.path.Store(r.URL.Path)
		s.query.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"backend":"` + name + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func newRouter(t *testing.T, routes []Route) *gin.Engine {
	t.Helper()
	p, err := New(routes, nil)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(p.Handler())
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDefaultRoutes(t *testing.T) {
	routes := DefaultRoutes(ServiceURLs{ML: "http://ml:9006", User: "http://user:8082"})

	targets := map[string]string{}
	for _, r := range routes {
		targets[r.Prefix] = r.Target
	}
	assert.Equal(t, "http://ml:9006", targets["/api/titanic/"])
	assert.Equal(t, "http://ml:9006", targets["/seoul_map/"])
	assert.Equal(t, "http://user:8082", targets["/api/user/"])
}

func TestProxy_ForwardsPathAndQuery(t *testing.T) {
	ml, mlSeen := fakeBackend(t, "ml")
	r := newRouter(t, []Route{{Prefix: "/api/titanic/", Target: ml.URL}})

	w := get(r, "/api/titanic/passengers/top10?limit=3")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"backend":"ml"}`, w.Body.String())
	assert.Equal(t, int32(1), mlSeen.hits.Load())
	assert.Equal(t, "/api/titanic/passengers/top10", mlSeen.path.Load())
	assert.Equal(t, "limit=3", mlSeen.query.Load())
}

func TestProxy_LongestPrefixWins(t *testing.T) {
	general, generalSeen := fakeBackend(t, "general")
	specific, specificSeen := fakeBackend(t, "specific")

	r := newRouter(t, []Route{
		{Prefix: "/api/", Target: general.URL},
		{Prefix: "/api/ml/", Target: specific.URL},
	})

	w := get(r, "/api/ml/predict")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"backend":"specific"}`, w.Body.String())
	assert.Equal(t, int32(0), generalSeen.hits.Load())
	assert.Equal(t, int32(1), specificSeen.hits.Load())
}

func TestProxy_UnknownPathIs404(t *testing.T) {
	ml, mlSeen := fakeBackend(t, "ml")
	r := newRouter(t, []Route{{Prefix: "/nlp/", Target: ml.URL}})

	w := get(r, "/unknown/thing")

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, int32(0), mlSeen.hits.Load())
}

func TestProxy_UpstreamDownIs502(t *testing.T) {
	ml, _ := fakeBackend(t, "ml")
	url := ml.URL
	ml.Close()

	r := newRouter(t, []Route{{Prefix: "/us_map/", Target: url}})
	w := get(r, "/us_map/data")

	require.Equal(t, http.StatusBadGateway, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"upstream unavailable"}`, string(body))
}

func TestNew_RejectsBadRoutes(t *testing.T) {
	_, err := New([]Route{{Prefix: "nlp/", Target: "http://ml:9006"}}, nil)
	assert.Error(t, err)

	_, err = New([]Route{{Prefix: "/nlp/", Target: "ml:9006"}}, nil)
	assert.Error(t, err)

	_, err = New([]Route{
		{Prefix: "/nlp/", Target: "http://ml:9006"},
		{Prefix: "/nlp/", Target: "http://other:9006"},
	}, nil)
	assert.Error(t, err)
}

func TestLoadRoutes(t *testing.T) {
	def := DefaultRoutes(ServiceURLs{ML: "http://ml:9006", User: "http://user:8082"})

	got, err := LoadRoutes("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	path := filepath.Join(t.TempDir(), "proxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - prefix: /api/titanic/
    target: http://titanic:9000
`), 0o600))

	got, err = LoadRoutes(path, def)
	require.NoError(t, err)
	assert.Equal(t, []Route{{Prefix: "/api/titanic/", Target: "http://titanic:9000"}}, got)

	require.NoError(t, os.WriteFile(path, []byte("routes: []\n"), 0o600))
	_, err = LoadRoutes(path, def)
	assert.Error(t, err)
}
