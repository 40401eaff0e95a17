package client

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

type BatchRequest struct {
	Endpoint string
	Options  RequestOptions
}

// BatchResult holds either Data or Err for one request.
type BatchResult struct {
	Data json.RawMessage
	Err  error
}

// Batch runs the requests concurrently. A failing request never cancels the
// others; its error is reported inline at the same index.
func (g *Gateway) Batch(ctx context.Context, requests []BatchRequest) []BatchResult {
	results := make([]BatchResult, len(requests))
	var eg errgroup.Group
	for i, req := range requests {
		eg.Go(func() error {
			data, err := g.Request(ctx, req.Endpoint, req.Options)
			results[i] = BatchResult{Data: data, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
