package deviantart

import (
	"context"
	"net/url"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
)

// Deviation fetches a single deviation by id.
func (s *Service) Deviation(ctx context.Context, deviationID string) (*models.Deviation, error) {
	resp, err := s.client.Get(ctx, "/deviation/"+deviationID, nil)
	if err != nil {
		return nil, err
	}
	var d models.Deviation
	if err := resp.UnmarshalData(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Metadata fetches extended metadata (description, tags, license) for
// up to 50 deviations at a time.
func (s *Service) Metadata(ctx context.Context, deviationIDs []string) ([]models.DeviationMetadata, error) {
	if len(deviationIDs) == 0 {
		return nil, output.ErrUsage("No deviation ids given")
	}
	q := url.Values{}
	for _, id := range deviationIDs {
		q.Add("deviationids[]", id)
	}
	s.applyMature(q)

	resp, err := s.client.Get(ctx, "/deviation/metadata", q)
	if err != nil {
		return nil, err
	}
	var env struct {
		Metadata []models.DeviationMetadata `json:"metadata"`
	}
	if err := resp.UnmarshalData(&env); err != nil {
		return nil, err
	}
	return env.Metadata, nil
}
