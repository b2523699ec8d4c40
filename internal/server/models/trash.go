package models

// TrashPage is one page of soft-deleted notes, newest deletion first.
type TrashPage struct {
	Notes           []*Note `json:"notes"`
	TotalCount      int     `json:"totalCount"`
	TotalPages      int     `json:"totalPages"`
	CurrentPage     int     `json:"currentPage"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
}

// EmptyTrashResult reports how many notes an empty-trash call removed.
type EmptyTrashResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// PurgedNote identifies a note removed by the expiry sweep.
type PurgedNote struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

// SweepResult is the outcome of one expiry sweep.
type SweepResult struct {
	DeletedCount int64        `json:"deletedCount"`
	DeletedNotes []PurgedNote `json:"deletedNotes"`
}
