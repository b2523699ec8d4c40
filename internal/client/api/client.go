// Package api is the HTTP client of the GophNotes server API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	tokens   models.Tokens
	onTokens func(models.Tokens)
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokens installs the session tokens used for authenticated calls.
func (c *Client) SetTokens(t models.Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

func (c *Client) Tokens() models.Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// OnTokensChanged registers fn to be called whenever a login or a refresh
// yields new tokens.
func (c *Client) OnTokensChanged(fn func(models.Tokens)) {
	c.mu.Lock()
	c.onTokens = fn
	c.mu.Unlock()
}

func (c *Client) storeTokens(t models.Tokens) {
	c.mu.Lock()
	c.tokens = t
	fn := c.onTokens
	c.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

func (c *Client) send(ctx context.Context, method, path string, in any, token string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return c.http.Do(req)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// authCall sends an authenticated request. An expired access token is
// refreshed once and the request repeated.
func (c *Client) authCall(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in, c.Tokens().AccessToken)
	if err != nil {
		return err
	}
	err = decodeResponse(resp, out)
	if !errors.Is(err, common.ErrTokenExpired) || c.Tokens().RefreshToken == "" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return rerr
	}
	resp, err = c.send(ctx, method, path, in, c.Tokens().AccessToken)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func pageQuery(page, limit int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return "?" + q.Encode()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodPost, "/auth/register", credentials{email, password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var t models.Tokens
	if err := c.call(ctx, http.MethodPost, "/auth/login", credentials{email, password}, &t); err != nil {
		return err
	}
	c.storeTokens(t)
	return nil
}

// Refresh trades the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) error {
	var t models.Tokens
	in := map[string]string{"refreshToken": c.Tokens().RefreshToken}
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", in, &t); err != nil {
		return err
	}
	c.storeTokens(t)
	return nil
}

// Logout revokes the refresh token and forgets the session locally.
func (c *Client) Logout(ctx context.Context) error {
	in := map[string]string{"refreshToken": c.Tokens().RefreshToken}
	err := c.call(ctx, http.MethodPost, "/auth/logout", in, nil)
	c.storeTokens(models.Tokens{})
	return err
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authCall(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	in := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.authCall(ctx, http.MethodPost, "/auth/password", in, nil)
}

func (c *Client) CompleteOnboarding(ctx context.Context) error {
	return c.authCall(ctx, http.MethodPost, "/auth/onboarding", nil, nil)
}

// NoteInput is the editable part of a note.
type NoteInput struct {
	Title   string   `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

func (c *Client) ListNotes(ctx context.Context, page, limit int) (*models.NotePage, error) {
	var p models.NotePage
	if err := c.authCall(ctx, http.MethodGet, "/notes"+pageQuery(page, limit), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateNote(ctx context.Context, in NoteInput) (*models.Note, error) {
	var n models.Note
	if err := c.authCall(ctx, http.MethodPost, "/notes", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.authCall(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, in NoteInput) (*models.Note, error) {
	var n models.Note
	if err := c.authCall(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote moves the note to the trash.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.authCall(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Summarize(ctx context.Context, id string) (*models.Note, error) {
	var out struct {
		Note *models.Note `json:"note"`
	}
	if err := c.authCall(ctx, http.MethodPost, "/notes/"+url.PathEscape(id)+"/summary", nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

func (c *Client) GenerateTags(ctx context.Context, id string) (*models.Note, error) {
	var out struct {
		Note *models.Note `json:"note"`
	}
	if err := c.authCall(ctx, http.MethodPost, "/notes/"+url.PathEscape(id)+"/tags", nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

func (c *Client) Usage(ctx context.Context) (*models.UsageTotals, error) {
	var out struct {
		Totals *models.UsageTotals `json:"totals"`
	}
	if err := c.authCall(ctx, http.MethodGet, "/ai/usage", nil, &out); err != nil {
		return nil, err
	}
	return out.Totals, nil
}

func (c *Client) ListTrash(ctx context.Context, page, limit int) (*models.TrashPage, error) {
	var p models.TrashPage
	if err := c.authCall(ctx, http.MethodGet, "/trash"+pageQuery(page, limit), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Restore(ctx context.Context, id string) error {
	return c.authCall(ctx, http.MethodPost, "/trash/"+url.PathEscape(id)+"/restore", nil, nil)
}

// Purge permanently deletes a note from the trash.
func (c *Client) Purge(ctx context.Context, id string) error {
	return c.authCall(ctx, http.MethodDelete, "/trash/"+url.PathEscape(id), nil, nil)
}

func (c *Client) EmptyTrash(ctx context.Context) (int64, error) {
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := c.authCall(ctx, http.MethodDelete, "/trash", nil, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}
