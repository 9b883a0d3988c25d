package deviantart

import (
	"context"
	"net/url"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/page"
)

const folderPageSize = 50

// GallerySource pages through a user's whole gallery.
func (s *Service) GallerySource(username string) *page.Source[models.Deviation] {
	return s.deviationSource("/gallery/all", func() url.Values {
		q := url.Values{}
		q.Set("username", username)
		return q
	})
}

// GalleryFolderSource pages through one gallery folder.
func (s *Service) GalleryFolderSource(username, folderID string) *page.Source[models.Deviation] {
	return s.deviationSource("/gallery/"+folderID, func() url.Values {
		q := url.Values{}
		q.Set("username", username)
		return q
	})
}

// GalleryFolders lists a user's gallery folders with their sizes.
func (s *Service) GalleryFolders(ctx context.Context, username string) ([]models.Folder, error) {
	src := page.NewOffset(folderPageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Folder], error) {
		q := url.Values{}
		q.Set("username", username)
		q.Set("calculate_size", "true")
		return fetchList[models.Folder](ctx, s, "/gallery/folders", q, offset, limit)
	})
	return src.FetchAll(ctx, 0)
}
