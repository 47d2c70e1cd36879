package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/link"
)

// CreateAuthorRequest - POST /v1/authors
// Authors start without books; links are added from the book side.
type CreateAuthorRequest struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Birthday  time.Time `json:"birthday"`
}

// UpdateAuthorRequest - PATCH /v1/authors/:id
// All fields optional. BookIDs == nil leaves the links untouched; an empty
// non-nil list is rejected.
type UpdateAuthorRequest struct {
	FirstName *string    `json:"firstName,omitempty"`
	LastName  *string    `json:"lastName,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	BookIDs   []string   `json:"bookIds,omitempty"`
}

// Patch extracts the scalar part of the request.
func (req *UpdateAuthorRequest) Patch() AuthorPatch {
	return AuthorPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthday:  req.Birthday,
	}
}

// ToEntity converts CreateAuthorRequest to Author entity
func (req *CreateAuthorRequest) ToEntity() *Author {
	return &Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthday:  req.Birthday,
		BookIDs:   []uuid.UUID{},
	}
}

// AuthorResponse - API shape of an author
type AuthorResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Birthday  time.Time `json:"birthday"`
	BookIDs   []string  `json:"bookIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToResponse converts Author entity to AuthorResponse DTO
func (a *Author) ToResponse() *AuthorResponse {
	bookIDs := make([]string, len(a.BookIDs))
	for i, id := range a.BookIDs {
		bookIDs[i] = id.String()
	}
	return &AuthorResponse{
		ID:        a.ID.String(),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Birthday:  a.Birthday,
		BookIDs:   bookIDs,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// UnmarshalJSON accepts birthday as a bare date or an RFC 3339 timestamp.
func (req *CreateAuthorRequest) UnmarshalJSON(data []byte) error {
	type plain CreateAuthorRequest
	aux := struct {
		*plain
		Birthday *string `json:"birthday"`
	}{plain: (*plain)(req)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Birthday != nil {
		t, err := link.ParseDate(*aux.Birthday)
		if err != nil {
			return err
		}
		req.Birthday = t
	}
	return nil
}

func (req *UpdateAuthorRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateAuthorRequest
	aux := struct {
		*plain
		Birthday *string `json:"birthday,omitempty"`
	}{plain: (*plain)(req)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Birthday != nil {
		t, err := link.ParseDate(*aux.Birthday)
		if err != nil {
			return err
		}
		req.Birthday = &t
	}
	return nil
}
