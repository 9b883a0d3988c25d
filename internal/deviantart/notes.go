package deviantart

import (
	"context"
	"net/url"
	"strings"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
)

const notePageSize = 50

// NotesSource pages through the notes in a folder. An empty folder id
// means the inbox.
func (s *Service) NotesSource(folderID string) *page.Source[models.Note] {
	return page.NewOffset(notePageSize, func(ctx context.Context, offset, limit int) (page.Result[models.Note], error) {
		q := url.Values{}
		if folderID != "" {
			q.Set("folderid", folderID)
		}
		return fetchList[models.Note](ctx, s, "/notes", q, offset, limit)
	})
}

// Note fetches a single note with its full body.
func (s *Service) Note(ctx context.Context, noteID string) (*models.Note, error) {
	resp, err := s.client.Get(ctx, "/notes/"+noteID, nil)
	if err != nil {
		return nil, err
	}
	var note models.Note
	if err := resp.UnmarshalData(&note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNotes deletes the given notes.
func (s *Service) DeleteNotes(ctx context.Context, noteIDs []string) error {
	if len(noteIDs) == 0 {
		return output.ErrUsage("No note ids given")
	}
	q := url.Values{}
	for _, id := range noteIDs {
		q.Add("noteids[]", id)
	}
	_, err := s.client.PostForm(ctx, "/notes/delete", q, nil)
	return err
}

// MoveNotes moves the given notes into a folder.
func (s *Service) MoveNotes(ctx context.Context, noteIDs []string, folderID string) error {
	if len(noteIDs) == 0 {
		return output.ErrUsage("No note ids given")
	}
	q := url.Values{}
	for _, id := range noteIDs {
		q.Add("noteids[]", id)
	}
	q.Set("folderid", folderID)
	_, err := s.client.PostForm(ctx, "/notes/move", q, nil)
	return err
}

// NoteFolders lists the account's note folders.
func (s *Service) NoteFolders(ctx context.Context) ([]models.Folder, error) {
	resp, err := s.client.Get(ctx, "/notes/folders", nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Results []models.Folder `json:"results"`
	}
	if err := resp.UnmarshalData(&env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// CreateNoteFolder creates a note folder and returns it.
func (s *Service) CreateNoteFolder(ctx context.Context, name string) (*models.Folder, error) {
	q := url.Values{}
	q.Set("folder", name)

	resp, err := s.client.PostForm(ctx, "/notes/folders/create", q, nil)
	if err != nil {
		return nil, err
	}
	var folder models.Folder
	if err := resp.UnmarshalData(&folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteNoteFolder removes a note folder.
func (s *Service) DeleteNoteFolder(ctx context.Context, folderID string) error {
	_, err := s.client.PostForm(ctx, "/notes/folders/remove/"+folderID, nil, nil)
	return err
}

// RenameNoteFolder renames a note folder.
func (s *Service) RenameNoteFolder(ctx context.Context, folderID, newName string) error {
	q := url.Values{}
	q.Set("folder", newName)
	_, err := s.client.PostForm(ctx, "/notes/folders/rename/"+folderID, q, nil)
	return err
}

// SendNote sends a note to one or more recipients.
func (s *Service) SendNote(ctx context.Context, to []string, subject, body string) ([]models.Note, error) {
	if len(to) == 0 {
		return nil, output.ErrUsage("No recipients given")
	}
	if strings.TrimSpace(body) == "" {
		return nil, output.ErrUsage("Note body cannot be empty")
	}

	data := url.Values{}
	for _, recipient := range to {
		data.Add("to", recipient)
	}
	data.Set("subject", subject)
	data.Set("body", body)

	resp, err := s.client.PostForm(ctx, "/notes/send", nil, data)
	if err != nil {
		return nil, err
	}
	var env struct {
		Results []models.Note `json:"results"`
	}
	if err := resp.UnmarshalData(&env); err != nil {
		return nil, err
	}
	return env.Results, nil
}
