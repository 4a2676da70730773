package facade

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAggregate_FailedBranchUsesFallback(t *testing.T) {
	ok := backend(t, http.StatusOK, `{"x":1}`)
	broken := backend(t, http.StatusInternalServerError, `oops`)

	agg := NewAggregator(&http.Client{Timeout: time.Second})
	res, err := agg.Aggregate(context.Background(), []Call{
		{Name: "a", URL: broken.URL},
		{Name: "b", URL: ok.URL},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, res.Documents["a"])
	assert.Equal(t, map[string]any{"x": float64(1)}, res.Documents["b"])
}

func TestAggregate_FallbackCases(t *testing.T) {
	cases := map[string]*httptest.Server{
		"empty body": backend(t, http.StatusOK, ``),
		"not json":   backend(t, http.StatusOK, `<html>`),
		"json array": backend(t, http.StatusOK, `[1,2]`),
		"json null":  backend(t, http.StatusOK, `null`),
		"not found":  backend(t, http.StatusNotFound, `{"x":1}`),
	}

	agg := NewAggregator(nil)
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := agg.Aggregate(context.Background(), []Call{
				{Name: "svc", URL: srv.URL, Fallback: map[string]any{"status": "DOWN"}},
			})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"status": "DOWN"}, res.Documents["svc"])
		})
	}
}

func TestAggregate_UnreachableBackend(t *testing.T) {
	srv := backend(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	res, err := NewAggregator(nil).Aggregate(context.Background(), []Call{{Name: "gone", URL: url}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, res.Documents["gone"])
}

func TestAggregate_BranchesRunConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(200 * time.Millisecond)
		inflight.Add(-1)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(slow.Close)

	res, err := NewAggregator(nil).Aggregate(context.Background(), []Call{
		{Name: "one", URL: slow.URL},
		{Name: "two", URL: slow.URL},
		{Name: "three", URL: slow.URL},
	})
	require.NoError(t, err)

	assert.Len(t, res.Documents, 3)
	assert.Equal(t, int32(3), peak.Load())
}

// routeTransport panics for one host and uses the default transport for the rest.
type routeTransport struct {
	panicHost string
}

func (rt routeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.URL.Host == rt.panicHost {
		panic("transport bug")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestAggregate_PanickingBranchFallsBack(t *testing.T) {
	titanic := backend(t, http.StatusOK, `{"x":1}`)
	agg := NewAggregator(&http.Client{Transport: routeTransport{panicHost: "userservice.invalid"}})

	var (
		res *Result
		err error
	)
	assert.NotPanics(t, func() {
		res, err = agg.Aggregate(context.Background(), []Call{
			{Name: "user", URL: "http://userservice.invalid/api/user/profile", Fallback: map[string]any{"status": "DOWN"}},
			{Name: "titanic", URL: titanic.URL},
		})
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"status": "DOWN"}, res.Documents["user"])
	assert.Equal(t, map[string]any{"x": float64(1)}, res.Documents["titanic"])
}

func TestAggregate_AbandonedRequestFails(t *testing.T) {
	srv := backend(t, http.StatusOK, `{"x":1}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewAggregator(nil).Aggregate(ctx, []Call{{Name: "svc", URL: srv.URL}})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallFallbackIsCopied(t *testing.T) {
	c := Call{Fallback: map[string]any{"status": "DOWN"}}
	fb := c.fallback()
	fb["status"] = "changed"
	assert.Equal(t, "DOWN", c.Fallback["status"])
}
