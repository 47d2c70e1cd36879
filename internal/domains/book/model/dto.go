package model

import (
	"encoding/json"
	"time"

	"bookshelf-backend/internal/domains/link"
)

// =====================================================
// CREATE BOOK REQUEST
// =====================================================
type CreateBookRequest struct {
	Title       string    `json:"title"`
	IBAN        string    `json:"iban"`
	PublishedAt time.Time `json:"publishedAt"`
	AuthorIDs   []string  `json:"authorIds"`
}

// =====================================================
// UPDATE BOOK REQUEST
// =====================================================
// AuthorIDs == nil leaves the links as they are. An empty list is a
// validation error: a book keeps at least one author.
type UpdateBookRequest struct {
	Title       *string    `json:"title,omitempty"`
	IBAN        *string    `json:"iban,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuthorIDs   []string   `json:"authorIds,omitempty"`
}

func (req *UpdateBookRequest) Patch() BookPatch {
	return BookPatch{
		Title:       req.Title,
		IBAN:        req.IBAN,
		PublishedAt: req.PublishedAt,
	}
}

// =====================================================
// BOOK RESPONSE
// =====================================================
type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IBAN        string    `json:"iban"`
	PublishedAt time.Time `json:"publishedAt"`
	AuthorIDs   []string  `json:"authorIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (b *Book) ToResponse() *BookResponse {
	authorIDs := make([]string, len(b.AuthorIDs))
	for i, id := range b.AuthorIDs {
		authorIDs[i] = id.String()
	}
	return &BookResponse{
		ID:          b.ID.String(),
		Title:       b.Title,
		IBAN:        b.IBAN,
		PublishedAt: b.PublishedAt,
		AuthorIDs:   authorIDs,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func ToResponses(books []*Book) []*BookResponse {
	out := make([]*BookResponse, len(books))
	for i, b := range books {
		out[i] = b.ToResponse()
	}
	return out
}

// UnmarshalJSON accepts publishedAt as a bare date or an RFC 3339 timestamp.
func (req *CreateBookRequest) UnmarshalJSON(data []byte) error {
	type plain CreateBookRequest
	aux := struct {
		*plain
		PublishedAt *string `json:"publishedAt"`
	}{plain: (*plain)(req)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PublishedAt != nil {
		t, err := link.ParseDate(*aux.PublishedAt)
		if err != nil {
			return err
		}
		req.PublishedAt = t
	}
	return nil
}

func (req *UpdateBookRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateBookRequest
	aux := struct {
		*plain
		PublishedAt *string `json:"publishedAt,omitempty"`
	}{plain: (*plain)(req)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.PublishedAt != nil {
		t, err := link.ParseDate(*aux.PublishedAt)
		if err != nil {
			return err
		}
		req.PublishedAt = &t
	}
	return nil
}
