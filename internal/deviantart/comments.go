package deviantart

import (
	"context"
	"net/url"
	"strconv"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
)

const commentPageSize = 50

// commentsEnvelope adds the thread fields to the list shape.
type commentsEnvelope struct {
	HasMore    bool             `json:"has_more"`
	NextOffset *int             `json:"next_offset"`
	Total      int              `json:"total,omitempty"`
	Thread     []models.Comment `json:"thread"`
}

// CommentsSource pages through the comment thread on a deviation.
// maxDepth bounds how deeply nested replies are expanded.
func (s *Service) CommentsSource(deviationID string, maxDepth int) *page.Source[models.Comment] {
	return page.NewOffset(commentPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Comment], error) {
		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(limit))
		q.Set("maxdepth", strconv.Itoa(maxDepth))
		s.applyMature(q)

		resp, err := s.client.Get(ctx, "/comments/deviation/"+deviationID, q)
		if err != nil {
			return page.Result[models.Comment]{}, err
		}

		var env commentsEnvelope
		if err := resp.UnmarshalData(&env); err != nil {
			return page.Result[models.Comment]{}, err
		}
		res := page.Result[models.Comment]{Items: env.Thread, HasMore: env.HasMore}
		if env.NextOffset != nil {
			res.NextOffset = *env.NextOffset
		}
		return res, nil
	})
}

// SiblingsSource pages through the siblings of a comment.
func (s *Service) SiblingsSource(commentID string) *page.Source[models.Comment] {
	return page.NewOffset(commentPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Comment], error) {
		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(limit))

		resp, err := s.client.Get(ctx, "/comments/"+commentID+"/siblings", q)
		if err != nil {
			return page.Result[models.Comment]{}, err
		}

		var env commentsEnvelope
		if err := resp.UnmarshalData(&env); err != nil {
			return page.Result[models.Comment]{}, err
		}
		res := page.Result[models.Comment]{Items: env.Thread, HasMore: env.HasMore}
		if env.NextOffset != nil {
			res.NextOffset = *env.NextOffset
		}
		return res, nil
	})
}

// PostComment posts a comment on a deviation. replyTo is the id of the
// comment being replied to, empty for a top-level comment.
func (s *Service) PostComment(ctx context.Context, deviationID, body, replyTo string) (*models.Comment, error) {
	if body == "" {
		return nil, output.ErrUsage("Comment body cannot be empty")
	}

	data := url.Values{}
	data.Set("body", body)
	if replyTo != "" {
		data.Set("commentid", replyTo)
	}

	resp, err := s.client.PostForm(ctx, "/comments/post/deviation/"+deviationID, nil, data)
	if err != nil {
		return nil, err
	}
	var comment models.Comment
	if err := resp.UnmarshalData(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
