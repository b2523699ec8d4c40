// Package models defines server-side data models persisted in the database.
package models

import "time"

// Note is a user's note. A nil DeletedAt means the note is active; a non-nil
// one means it sits in the trash until restored or purged.
type Note struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Content   *string    `json:"content"`
	Summary   *string    `json:"summary,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string    `json:"deletedBy,omitempty"`
}

// InTrash reports whether the note has been soft deleted.
func (n *Note) InTrash() bool { return n.DeletedAt != nil }

// NotePage is one page of active notes.
type NotePage struct {
	Notes       []*Note `json:"notes"`
	TotalCount  int     `json:"totalCount"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}
