package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// MaxTags is the most tags GenerateTags stores on a note.
const MaxTags = 5

// ChatCompleter is the part of the OpenAI client the assistant needs.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for cfg, or returns nil when no API key is
// configured.
func NewOpenAIClient(cfg *config.Config) ChatCompleter {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	c := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		c.BaseURL = cfg.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(c)
}

// AIService generates summaries and tags for notes and accounts the tokens
// each call consumed.
type AIService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	client      ChatCompleter
	model       string
	maxTokens   int
	logger      logging.Logger
	now         func() time.Time
}

// NewAIService constructs the assistant. A nil client disables it: every
// call then returns common.ErrAIUnavailable.
func NewAIService(db *sql.DB, m repomanager.RepositoryManager, client ChatCompleter, cfg *config.Config, logger logging.Logger) *AIService {
	return &AIService{
		db:          db,
		repomanager: m,
		client:      client,
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.OpenAIMaxTokens,
		logger:      logger.With("module", "ai"),
		now:         time.Now,
	}
}

// Enabled reports whether a model client is configured.
func (s *AIService) Enabled() bool { return s.client != nil }

const summaryPrompt = `Summarize the following note in at most two sentences.
Answer with the summary text only.

Title: %s

%s`

const tagsPrompt = `Suggest up to %d short lowercase tags for the following note.
Return the response as a JSON array of strings, for example ["work", "ideas"].

Title: %s

%s`

// Summarize stores an AI summary on the caller's active note and returns it.
func (s *AIService) Summarize(ctx context.Context, id Identity, noteID string) (_ *models.Note, err error) {
	ctx, span := startSpan(ctx, "AIService.Summarize", id, attribute.String("note.id", noteID))
	defer func() { endSpan(span, err) }()

	note, err := s.loadNote(ctx, id, noteID)
	if err != nil {
		return nil, err
	}

	answer, err := s.complete(ctx, id, note.ID, models.UsageOperationSummary,
		fmt.Sprintf(summaryPrompt, note.Title, deref(note.Content)))
	if err != nil {
		return nil, err
	}

	summary := strings.TrimSpace(answer)
	if err := s.repomanager.Notes(s.db).UpdateSummary(ctx, note.ID, id.UserID, summary, s.now()); err != nil {
		return nil, common.Persistence("store summary", err)
	}
	note.Summary = &summary
	return note, nil
}

// GenerateTags stores AI tags on the caller's active note and returns it.
// Answers that are not a JSON array fall back to keyword extraction from
// the note itself.
func (s *AIService) GenerateTags(ctx context.Context, id Identity, noteID string) (_ *models.Note, err error) {
	ctx, span := startSpan(ctx, "AIService.GenerateTags", id, attribute.String("note.id", noteID))
	defer func() { endSpan(span, err) }()

	note, err := s.loadNote(ctx, id, noteID)
	if err != nil {
		return nil, err
	}

	answer, err := s.complete(ctx, id, note.ID, models.UsageOperationTags,
		fmt.Sprintf(tagsPrompt, MaxTags, note.Title, deref(note.Content)))
	if err != nil {
		return nil, err
	}

	tags, perr := parseTags(answer)
	if perr != nil {
		s.logger.Warn(ctx, "unparsable tag answer, using keyword fallback", "error", perr, "answer", answer)
		tags = fallbackTags(note.Title + " " + deref(note.Content))
	}

	if err := s.repomanager.Notes(s.db).UpdateTags(ctx, note.ID, id.UserID, tags, s.now()); err != nil {
		return nil, common.Persistence("store tags", err)
	}
	note.Tags = tags
	return note, nil
}

// Usage returns the caller's token usage since the given time.
func (s *AIService) Usage(ctx context.Context, id Identity, since time.Time) (*models.UsageTotals, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	t, err := s.repomanager.Usage(s.db).Totals(ctx, id.UserID, since)
	if err != nil {
		return nil, common.Persistence("usage totals", err)
	}
	return t, nil
}

func (s *AIService) loadNote(ctx context.Context, id Identity, noteID string) (*models.Note, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, common.ErrAIUnavailable
	}
	if !validID(noteID) {
		return nil, common.ErrorNotFound
	}
	note, err := s.repomanager.Notes(s.db).GetActive(ctx, noteID, id.UserID)
	if err != nil {
		return nil, common.Persistence("get note", err)
	}
	return note, nil
}

func (s *AIService) complete(ctx context.Context, id Identity, noteID, operation, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Error(ctx, "chat completion failed", "operation", operation, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrAIUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty answer", common.ErrAIUnavailable)
	}

	usage := &models.Usage{
		UserID:           id.UserID,
		NoteID:           &noteID,
		Operation:        operation,
		Model:            s.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if err := s.repomanager.Usage(s.db).Record(ctx, usage); err != nil {
		// the answer is still usable; accounting gaps are logged
		s.logger.Error(ctx, "recording ai usage failed", "error", err)
	}
	metrics.AITokens.WithLabelValues(operation).Add(float64(resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

func parseTags(answer string) ([]string, error) {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")

	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(answer)), &raw); err != nil {
		return nil, err
	}
	return cleanTags(raw), nil
}

func cleanTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

var keywordCategories = map[string][]string{
	"work":      {"project", "meeting", "deadline", "task", "report"},
	"personal":  {"family", "friend", "home", "birthday", "holiday"},
	"shopping":  {"buy", "purchase", "store", "shop", "price"},
	"education": {"study", "learn", "course", "book", "homework"},
	"travel":    {"trip", "flight", "hotel", "vacation", "booking"},
}

// fallbackTags extracts #hashtags and keyword categories from text.
func fallbackTags(text string) []string {
	var raw []string
	for _, w := range strings.Fields(text) {
		if strings.HasPrefix(w, "#") && len(w) > 1 {
			raw = append(raw, strings.Trim(w, "#.,;:!?"))
		}
	}

	lower := strings.ToLower(text)
	categories := make([]string, 0, len(keywordCategories))
	for category, keywords := range keywordCategories {
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				categories = append(categories, category)
				break
			}
		}
	}
	sort.Strings(categories)

	return cleanTags(append(raw, categories...))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
