// Package facade composes several backend calls into one response. Each
// branch degrades to its fallback document independently of the others.
package facade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

// Call is one backend branch of an aggregate.
type Call struct {
	Name string
	URL  string

	// Fallback replaces the branch result on any failure. Nil means {}.
	Fallback map[string]any
}

func (c Call) fallback() map[string]any {
	out := make(map[string]any, len(c.Fallback))
	for k, v := range c.Fallback {
		out[k] = v
	}
	return out
}

// Result holds one JSON object per call name.
type Result struct {
	Documents map[string]any
	Timestamp time.Time
}

type Aggregator struct {
	client *http.Client
	now    func() time.Time
}

func NewAggregator(client *http.Client) *Aggregator {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Aggregator{
		client: client,
		now:    time.Now,
	}
}

// Aggregate runs every call concurrently and waits for all of them. A branch
// that fails or panics is replaced by its fallback and never cancels its
// siblings. The aggregate itself fails only when the request is abandoned
// before the branches join.
func (a *Aggregator) Aggregate(ctx context.Context, calls []Call) (*Result, error) {
	docs := make([]map[string]any, len(calls))

	// Plain Group: no derived context, so one branch cannot cancel another.
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					metrics.FacadeBranchesTotal.WithLabelValues(call.Name, "fallback").Inc()
					logger.Error("facade branch panicked", map[string]any{
						"branch": call.Name,
						"url":    call.URL,
						"panic":  fmt.Sprint(r),
					})
					docs[i] = call.fallback()
				}
			}()
			docs[i] = a.fetch(ctx, call)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		logger.Error("facade aggregate failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("facade: aggregate: %w", err)
	}

	res := &Result{
		Documents: make(map[string]any, len(calls)),
		Timestamp: a.now(),
	}
	for i, call := range calls {
		res.Documents[call.Name] = docs[i]
	}
	return res, nil
}

func (a *Aggregator) fetch(ctx context.Context, call Call) map[string]any {
	doc, err := a.getObject(ctx, call.URL)
	if err != nil {
		metrics.FacadeBranchesTotal.WithLabelValues(call.Name, "fallback").Inc()
		logger.Warn("facade branch failed", map[string]any{
			"branch": call.Name,
			"url":    call.URL,
			"error":  err.Error(),
		})
		return call.fallback()
	}
	metrics.FacadeBranchesTotal.WithLabelValues(call.Name, "ok").Inc()
	return doc
}

var errEmptyBody = errors.New("empty body")

func (a *Aggregator) getObject(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errEmptyBody
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if doc == nil {
		return nil, errEmptyBody
	}
	return doc, nil
}
