package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/duccv/contact-addin/internal/model"
)

func decode[T any](raw json.RawMessage, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, newError(KindUnknown, "Unexpected response from server", err)
	}
	return out, nil
}

// EnrichKey is the cache key of an enrichment lookup.
func EnrichKey(email string) string {
	return EndpointEnrich + "?" + url.Values{"email": {email}}.Encode()
}

func SearchKey(q string) string {
	return EndpointSearch + "?" + url.Values{"q": {q}}.Encode()
}

func DirectoryKey(page, limit int) string {
	return EndpointDir + "?" + url.Values{
		"limit": {strconv.Itoa(limit)},
		"page":  {strconv.Itoa(page)},
	}.Encode()
}

// EnrichContact looks up directory data for the sender of the open item.
func (g *Gateway) EnrichContact(ctx context.Context, email string) (model.EnrichResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.EnrichResponse{}, newError(KindValidation, "Email address is required", nil)
	}
	key := EnrichKey(email)
	return decode[model.EnrichResponse](g.cachedGet(ctx, key))
}

func (g *Gateway) SearchContacts(ctx context.Context, query string) (model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinSearchLength {
		return model.SearchResponse{}, newError(KindValidation,
			fmt.Sprintf("Search query must be at least %d characters", MinSearchLength), nil)
	}
	key := SearchKey(query)
	return decode[model.SearchResponse](g.cachedGet(ctx, key))
}

// Directory fetches one page; zero page or limit use 1 and 20.
func (g *Gateway) Directory(ctx context.Context, page, limit int) (model.DirectoryResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultDirectoryPageSize
	}
	key := DirectoryKey(page, limit)
	return decode[model.DirectoryResponse](g.cachedGet(ctx, key))
}

func (g *Gateway) Stats(ctx context.Context) (model.StatsResponse, error) {
	return decode[model.StatsResponse](g.cachedGet(ctx, EndpointStats))
}

// Health is public and never cached.
func (g *Gateway) Health(ctx context.Context) (model.HealthResponse, error) {
	return decode[model.HealthResponse](g.Request(ctx, EndpointHealth, RequestOptions{}))
}
