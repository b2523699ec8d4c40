// Package services contains application services for the GophNotes client.
// This file defines the session service: register, login, logout and
// restoring a saved session from the local database.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// Metadata keys of the saved session.
const (
	keyTokens = "session.tokens"
	keyUser   = "session.user"
)

// AccountAPI is the part of the API client the session service uses.
type AccountAPI interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	SetTokens(t models.Tokens)
	Tokens() models.Tokens
	OnTokensChanged(fn func(models.Tokens))
}

type SessionService struct {
	api    AccountAPI
	db     *sql.DB
	logger logging.Logger
	user   *models.User
}

// NewSessionService binds the API client to the local database. Tokens
// issued by a later login or refresh are written back automatically.
func NewSessionService(api AccountAPI, db *sql.DB, logger logging.Logger) *SessionService {
	s := &SessionService{api: api, db: db, logger: logger.With("module", "session")}
	api.OnTokensChanged(s.persistTokens)
	return s
}

func (s *SessionService) metadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *SessionService) persistTokens(t models.Tokens) {
	ctx := context.Background()
	if t.AccessToken == "" && t.RefreshToken == "" {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := s.metadataRepo().Set(ctx, keyTokens, raw); err != nil {
		s.logger.Warn(ctx, "failed to persist session tokens", "error", err)
	}
}

// User is the logged-in user, or nil.
func (s *SessionService) User() *models.User { return s.user }

func (s *SessionService) LoggedIn() bool { return s.user != nil }

// Register creates an account. The password is wiped afterwards.
func (s *SessionService) Register(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)
	return s.api.Register(ctx, email, string(password))
}

// Login authenticates and saves the session locally. The password is wiped
// afterwards.
func (s *SessionService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	if err := s.api.Login(ctx, email, string(password)); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := s.saveSession(ctx, s.api.Tokens(), u); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	s.user = u
	return u, nil
}

// saveSession persists tokens and user in a single transaction.
func (s *SessionService) saveSession(ctx context.Context, t models.Tokens, u *models.User) error {
	tokens, err := json.Marshal(t)
	if err != nil {
		return err
	}
	user, err := json.Marshal(u)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyTokens, tokens); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, user)
	})
}

// Restore resumes a saved session. It returns common.ErrAuthenticationRequired
// when there is none or the server no longer accepts it. When the server
// cannot be asked, the cached user is used so local drafts stay reachable.
func (s *SessionService) Restore(ctx context.Context) (*models.User, error) {
	raw, err := s.metadataRepo().Get(ctx, keyTokens)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, common.ErrAuthenticationRequired
	}

	var t models.Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, common.ErrAuthenticationRequired
	}
	s.api.SetTokens(t)

	u, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationRequired) {
			return nil, err
		}
		cached, cerr := s.cachedUser(ctx)
		if cerr != nil || cached == nil {
			return nil, err
		}
		s.logger.Warn(ctx, "server unavailable, using cached session", "error", err)
		u = cached
	}
	s.user = u
	return u, nil
}

func (s *SessionService) cachedUser(ctx context.Context) (*models.User, error) {
	raw, err := s.metadataRepo().Get(ctx, keyUser)
	if err != nil || raw == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the session on the server when reachable and always forgets
// it locally.
func (s *SessionService) Logout(ctx context.Context) error {
	remoteErr := s.api.Logout(ctx)
	if remoteErr != nil {
		s.logger.Warn(ctx, "server logout failed", "error", remoteErr)
	}
	s.user = nil

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyTokens); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUser)
	})
}
