// Package deviantart wraps the API endpoints behind typed services and
// paginated sources.
package deviantart

import (
	"context"
	"net/url"
	"strconv"

	"github.com/scottbw/dvnt/internal/api"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/page"
)

// Service exposes the API surface used by the commands.
type Service struct {
	client *api.Client
	cfg    *config.Config
}

// New creates a service over the given client.
func New(client *api.Client, cfg *config.Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// listEnvelope is the shape shared by all offset-paginated endpoints.
type listEnvelope[T any] struct {
	HasMore        bool `json:"has_more"`
	NextOffset     *int `json:"next_offset"`
	EstimatedTotal int  `json:"estimated_total,omitempty"`
	Results        []T  `json:"results"`
}

// fetchList performs one offset-paginated GET and adapts the envelope
// to a page result.
func fetchList[T any](ctx context.Context, s *Service, path string, q url.Values, offset, limit int) (page.Result[T], error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	s.applyMature(q)

	resp, err := s.client.Get(ctx, path, q)
	if err != nil {
		return page.Result[T]{}, err
	}

	var env listEnvelope[T]
	if err := resp.UnmarshalData(&env); err != nil {
		return page.Result[T]{}, err
	}

	res := page.Result[T]{Items: env.Results, HasMore: env.HasMore}
	if env.NextOffset != nil {
		res.NextOffset = *env.NextOffset
	}
	return res, nil
}

// applyMature sets the mature content flag on browsing queries.
func (s *Service) applyMature(q url.Values) {
	if s.cfg.MatureContent {
		q.Set("mature_content", "true")
	}
}

// deviationSource builds an offset source over an endpoint returning
// deviations, using the configured page size.
func (s *Service) deviationSource(path string, q func() url.Values) *page.Source[models.Deviation] {
	return page.NewOffset(s.cfg.PageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Deviation], error) {
		return fetchList[models.Deviation](ctx, s, path, q(), offset, limit)
	})
}
