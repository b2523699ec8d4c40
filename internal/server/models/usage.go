package models

import "time"

// Usage operations recorded for AI calls.
const (
	UsageOperationSummary = "summary"
	UsageOperationTags    = "tags"
)

// Usage is one accounted AI call.
type Usage struct {
	ID               string
	UserID           string
	NoteID           *string
	Operation        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CreatedAt        time.Time
}

// UsageTotals sums token usage over a period.
type UsageTotals struct {
	Requests         int64 `json:"requests"`
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}
