// Package models defines the client-side view of the API payloads.
package models

import "time"

type Note struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Content   *string    `json:"content"`
	Summary   *string    `json:"summary"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// Body returns the note content, or "" when it has none.
func (n *Note) Body() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

type NotePage struct {
	Notes       []*Note `json:"notes"`
	TotalCount  int     `json:"totalCount"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}

type TrashPage struct {
	Notes           []*Note `json:"notes"`
	TotalCount      int     `json:"totalCount"`
	TotalPages      int     `json:"totalPages"`
	CurrentPage     int     `json:"currentPage"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Onboarded bool      `json:"onboarded"`
	CreatedAt time.Time `json:"createdAt"`
}

type UsageTotals struct {
	Requests         int64 `json:"requests"`
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
