package deviantart

import (
	"context"
	"net/url"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/page"
)

const watcherPageSize = 50

// Whoami returns the signed-in user.
func (s *Service) Whoami(ctx context.Context) (*models.User, error) {
	resp, err := s.client.Get(ctx, "/user/whoami", nil)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := resp.UnmarshalData(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile fetches a user's full profile.
func (s *Service) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	resp, err := s.client.Get(ctx, "/user/profile/"+username, nil)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := resp.UnmarshalData(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// WatchersSource pages through the users watching username.
func (s *Service) WatchersSource(username string) *page.Source[models.Watcher] {
	return page.NewOffset(watcherPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Watcher], error) {
		return fetchList[models.Watcher](ctx, s, "/user/watchers/"+username, nil, offset, limit)
	})
}

// FriendsSource pages through the users username is watching.
func (s *Service) FriendsSource(username string) *page.Source[models.Watcher] {
	return page.NewOffset(watcherPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Watcher], error) {
		return fetchList[models.Watcher](ctx, s, "/user/friends/"+username, nil, offset, limit)
	})
}

// SearchUsers searches among users by name.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.Watcher, error) {
	q := url.Values{}
	q.Set("query", query)

	resp, err := s.client.Get(ctx, "/user/friends/search", q)
	if err != nil {
		return nil, err
	}
	var env struct {
		Results []models.Watcher `json:"results"`
	}
	if err := resp.UnmarshalData(&env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Watch starts watching a user with the given subscription options.
func (s *Service) Watch(ctx context.Context, username string, watch models.Watch) error {
	data := url.Values{}
	set := func(field string, on bool) {
		if on {
			data.Set("watch["+field+"]", "1")
		} else {
			data.Set("watch["+field+"]", "0")
		}
	}
	set("friend", watch.Friend)
	set("deviations", watch.Deviations)
	set("journals", watch.Journals)
	set("forum_threads", watch.ForumThreads)
	set("critiques", watch.Critiques)
	set("scraps", watch.Scraps)
	set("activity", watch.Activity)
	set("collections", watch.Collections)

	_, err := s.client.PostForm(ctx, "/user/friends/watch/"+username, nil, data)
	return err
}

// Unwatch stops watching a user.
func (s *Service) Unwatch(ctx context.Context, username string) error {
	_, err := s.client.Delete(ctx, "/user/friends/unwatch/"+username)
	return err
}

// IsWatching reports whether the signed-in user watches username.
func (s *Service) IsWatching(ctx context.Context, username string) (bool, error) {
	resp, err := s.client.Get(ctx, "/user/friends/watching/"+username, nil)
	if err != nil {
		return false, err
	}
	var res struct {
		Watching bool `json:"watching"`
	}
	if err := resp.UnmarshalData(&res); err != nil {
		return false, err
	}
	return res.Watching, nil
}

// WatcherCounts sums a user's watcher and watching totals by draining
// both endpoints. Used when only numbers are needed.
func (s *Service) WatcherCounts(ctx context.Context, username string) (watchers, watching int, err error) {
	w, err := s.WatchersSource(username).FetchAll(ctx, 0)
	if err != nil {
		return 0, 0, err
	}
	f, err := s.FriendsSource(username).FetchAll(ctx, 0)
	if err != nil {
		return 0, 0, err
	}
	return len(w), len(f), nil
}
