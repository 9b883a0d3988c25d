package deviantart

import (
	"context"
	"net/url"
	"time"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/page"
)

// feedEnvelope is the cursor-paginated shape of the notification feed.
type feedEnvelope struct {
	HasMore bool             `json:"has_more"`
	Cursor  string           `json:"cursor"`
	Results []models.Message `json:"results"`
}

// FeedSource pages through the stacked notification feed using the
// server's opaque cursor.
func (s *Service) FeedSource() *page.Source[models.Message] {
	return page.NewCursor(func(ctx context.Context, cursor string) (page.Result[models.Message], error) {
		q := url.Values{}
		q.Set("stack", "true")
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		s.applyMature(q)

		resp, err := s.client.Get(ctx, "/messages/feed", q)
		if err != nil {
			return page.Result[models.Message]{}, err
		}

		var env feedEnvelope
		if err := resp.UnmarshalData(&env); err != nil {
			return page.Result[models.Message]{}, err
		}
		return page.Result[models.Message]{
			Items:      env.Results,
			HasMore:    env.HasMore,
			NextCursor: env.Cursor,
		}, nil
	})
}

// feedbackPageSize matches the server default for the feedback and
// mentions endpoints, which page in larger steps than browsing.
const feedbackPageSize = 50

// FeedbackSource pages through feedback notifications. feedbackType
// narrows the stream ("comments", "replies", "activity"); empty means
// everything.
func (s *Service) FeedbackSource(feedbackType string) *page.Source[models.Message] {
	return page.NewOffset(feedbackPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Message], error) {
		q := url.Values{}
		if feedbackType != "" {
			q.Set("type", feedbackType)
		}
		return fetchList[models.Message](ctx, s, "/messages/feedback", q, offset, limit)
	})
}

// MentionsSource pages through mention notifications.
func (s *Service) MentionsSource() *page.Source[models.Message] {
	return page.NewOffset(feedbackPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Message], error) {
		return fetchList[models.Message](ctx, s, "/messages/mentions", nil, offset, limit)
	})
}

// Notifications fetches feedback and mentions together and returns a
// single stream, newest first and deduplicated by message id. max caps
// how many items are pulled from each underlying source (0 = all).
func (s *Service) Notifications(ctx context.Context, feedbackType string, max int) ([]models.Message, error) {
	feedback, err := s.FeedbackSource(feedbackType).FetchAll(ctx, max)
	if err != nil {
		return nil, err
	}
	mentions, err := s.MentionsSource().FetchAll(ctx, max)
	if err != nil {
		return nil, err
	}

	merged := page.MergeByTimestamp(func(m models.Message) time.Time { return m.Time() }, feedback, mentions)
	return page.DedupeBy(merged, func(m models.Message) string { return m.MessageID }), nil
}
