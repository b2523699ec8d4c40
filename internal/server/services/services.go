// Package services contains the server-side business logic: accounts, notes,
// the trash lifecycle and the AI assistant. Services open repositories through
// a repomanager.RepositoryManager so a call can run on the pool or inside a
// transaction.
package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/gophnotes/internal/server/services")

// Identity is the caller as resolved by the transport layer.
type Identity struct {
	UserID        string
	Authenticated bool
}

// Anonymous is the identity of a request without valid credentials.
var Anonymous = Identity{}

// User returns an authenticated identity for userID.
func User(userID string) Identity {
	return Identity{UserID: userID, Authenticated: true}
}

func (i Identity) require() error {
	if !i.Authenticated || i.UserID == "" {
		return common.ErrAuthenticationRequired
	}
	return nil
}

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// clampPage normalises page and limit: values below 1 become 1, limit is
// capped at MaxPageSize and page is capped so that (page-1)*limit, the row
// offset, cannot overflow.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func startSpan(ctx context.Context, name string, id Identity, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("user.id", id.UserID))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span unless it is one of the expected client errors.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		var pe *common.PersistenceError
		if errors.As(err, &pe) || errors.Is(err, common.ErrorInternal) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
