package session

import (
	"context"
	"errors"
)

// State is the server-side session payload for one user. It is only ever
// mutated while handling that user's own request, so no cross-request
// locking is needed.
type State struct {
	// send wizard
	Recipient    string            `json:"recipient,omitempty"`
	RecipientSet bool              `json:"recipient_set,omitempty"`
	// Placeholders is non-nil once the wizard has been entered; an empty map
	// still means "started", so no omitempty.
	Placeholders map[string]string `json:"placeholders"`

	// upload flow
	UploadData *UploadData `json:"upload_data,omitempty"`

	// cached page count for letter previews; 0 means unknown and forces a
	// recompute
	LetterPageCount int `json:"send_test_letter_page_count,omitempty"`
}

// UploadData is created on a successful upload and destroyed on job
// submission.
type UploadData struct {
	OriginalFileName  string `json:"original_file_name"`
	TemplateID        string `json:"template_id"`
	NotificationCount int    `json:"notification_count"`
	Valid             bool   `json:"valid"`
	UploadID          string `json:"upload_id,omitempty"`
}

// ClearWizard drops the in-progress send state, keeping any upload data.
func (s *State) ClearWizard() {
	s.Recipient = ""
	s.RecipientSet = false
	s.Placeholders = nil
}

// StartWizard resets the wizard to an empty, initialised state.
func (s *State) StartWizard(recipient string) {
	s.Recipient = recipient
	s.RecipientSet = true
	s.Placeholders = map[string]string{}
}

var ErrNotFound = errors.New("session not found")

// Store persists session state keyed by session ID. Implementations:
// in-memory (tests, single instance) and Postgres.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Put(ctx context.Context, id string, s *State) error
	Delete(ctx context.Context, id string) error
}
