package deviantart

import (
	"context"
	"net/url"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/page"
)

// CollectionsSource pages through every deviation a user has faved.
func (s *Service) CollectionsSource(username string) *page.Source[models.Deviation] {
	return s.deviationSource("/collections/all", func() url.Values {
		q := url.Values{}
		q.Set("username", username)
		return q
	})
}

// CollectionFolderSource pages through one collection folder.
func (s *Service) CollectionFolderSource(username, folderID string) *page.Source[models.Deviation] {
	return s.deviationSource("/collections/"+folderID, func() url.Values {
		q := url.Values{}
		q.Set("username", username)
		return q
	})
}

// CollectionFolders lists a user's collection folders. An empty
// username means the signed-in account.
func (s *Service) CollectionFolders(ctx context.Context, username string) ([]models.Folder, error) {
	src := page.NewOffset(folderPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Folder], error) {
		q := url.Values{}
		if username != "" {
			q.Set("username", username)
		}
		q.Set("calculate_size", "true")
		return fetchList[models.Folder](ctx, s, "/collections/folders", q, offset, limit)
	})
	return src.FetchAll(ctx, 0)
}

// FaveResult reports the outcome of a fave or unfave.
type FaveResult struct {
	Success    bool `json:"success"`
	Favourites int  `json:"favourites"`
}

// Fave adds a deviation to the signed-in user's favourites, optionally
// into a specific folder.
func (s *Service) Fave(ctx context.Context, deviationID, folderID string) (*FaveResult, error) {
	data := url.Values{}
	data.Set("deviationid", deviationID)
	if folderID != "" {
		data.Set("folderid", folderID)
	}

	resp, err := s.client.PostForm(ctx, "/collections/fave", nil, data)
	if err != nil {
		return nil, err
	}
	var res FaveResult
	if err := resp.UnmarshalData(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Unfave removes a deviation from favourites.
func (s *Service) Unfave(ctx context.Context, deviationID string) (*FaveResult, error) {
	data := url.Values{}
	data.Set("deviationid", deviationID)

	resp, err := s.client.PostForm(ctx, "/collections/unfave", nil, data)
	if err != nil {
		return nil, err
	}
	var res FaveResult
	if err := resp.UnmarshalData(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateCollectionFolder creates a new collection folder and returns it.
func (s *Service) CreateCollectionFolder(ctx context.Context, name string) (*models.Folder, error) {
	q := url.Values{}
	q.Set("folder", name)

	resp, err := s.client.PostForm(ctx, "/collections/folders/create", q, nil)
	if err != nil {
		return nil, err
	}
	var folder models.Folder
	if err := resp.UnmarshalData(&folder); err != nil {
		return nil, err
	}
	return &folder, nil
}
