package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/netx"
)

const requestTimeout = 12 * time.Second

// tokenExpiredMessage matches the middleware's distinct 401 body for an
// expired access token.
const tokenExpiredMessage = "token expired"

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	userID       string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
	c.userID = ""
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type apiError struct {
	Error string `json:"error"`
}

// do performs one JSON request. Authenticated requests that fail with the
// expired-token 401 are retried once after a transparent token refresh,
// mirroring how the session would be kept alive by a long-running app.
func (c *HTTPClient) do(ctx context.Context, method, path string, reqBody any, out any, authed bool) error {

	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return err
		}
	}

	status, data, err := c.attempt(ctx, method, path, payload, authed)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && authed {
		var ae apiError
		_ = json.Unmarshal(data, &ae)

		_, refresh := c.tokens()
		if ae.Error == tokenExpiredMessage && refresh != "" {
			if err := c.refresh(ctx, refresh); err != nil {
				return err
			}
			status, data, err = c.attempt(ctx, method, path, payload, authed)
			if err != nil {
				return err
			}
		}
	}

	return decodeResponse(status, data, out)
}

func (c *HTTPClient) attempt(ctx context.Context, method, path string, payload []byte, authed bool) (int, []byte, error) {

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		access, _ := c.tokens()
		if access == "" {
			return 0, nil, common.ErrorUnauthenticated
		}
		req.Header.Set(common.AccessTokenHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", common.ErrorNoConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) error {

	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}

	status, data, err := c.attempt(ctx, http.MethodPost, "/api/auth/refresh", payload, false)
	if err != nil {
		return err
	}

	var tokens tokenResponse
	if err := decodeResponse(status, data, &tokens); err != nil {
		return err
	}

	c.setTokens(tokens.AccessToken, tokens.RefreshToken)
	return nil
}

func decodeResponse(status int, data []byte, out any) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil || len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, out)
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return common.ErrorUnauthenticated
	default:
		var ae apiError
		if err := json.Unmarshal(data, &ae); err == nil && ae.Error != "" {
			return fmt.Errorf("%w: %s", common.ErrorBackend, ae.Error)
		}
		return fmt.Errorf("%w: status %d", common.ErrorBackend, status)
	}
}

func (c *HTTPClient) SignIn(ctx context.Context, identityToken string) (string, error) {

	var tokens tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signin",
		map[string]string{"identity_token": identityToken}, &tokens, false)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.userID = tokens.UserID
	c.mu.Unlock()

	return tokens.UserID, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {

	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ping", nil, &status, false); err != nil {
		return err
	}
	if status.Status != "OK" {
		return common.ErrorBackend
	}
	return nil
}

func (c *HTTPClient) GetNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes, true); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) GetNotesBetween(ctx context.Context, from, to time.Time) ([]models.Note, error) {

	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))

	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes?"+q.Encode(), nil, &notes, true); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) GetNote(ctx context.Context, id string) (*models.Note, error) {
	note := &models.Note{}
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, note, true); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *HTTPClient) AddNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	created := &models.Note{}
	if err := c.do(ctx, http.MethodPost, "/api/notes", note, created, true); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	updated := &models.Note{}
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(note.ID), note, updated, true); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	deleted := &models.Note{}
	if err := c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, deleted, true); err != nil {
		return nil, err
	}
	return deleted, nil
}

func (c *HTTPClient) DeleteAllNotes(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/notes", nil, nil, true)
}

func (c *HTTPClient) PresignUpload(ctx context.Context, fileName, contentType string) (string, string, error) {

	var resp struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/images/presign-upload",
		map[string]string{"file_name": fileName, "content_type": contentType}, &resp, true)
	if err != nil {
		return "", "", err
	}
	return resp.Path, resp.URL, nil
}

func (c *HTTPClient) PresignUploadPath(ctx context.Context, path string) (string, error) {

	var resp struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/images/presign-upload",
		map[string]string{"path": path}, &resp, true)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *HTTPClient) PresignDownload(ctx context.Context, path string) (string, error) {

	var resp struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/images/presign-download",
		map[string]string{"path": path}, &resp, true)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *HTTPClient) ListImages(ctx context.Context) ([]string, error) {

	var resp struct {
		Paths []string `json:"paths"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/images", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Paths, nil
}

func (c *HTTPClient) DeleteImage(ctx context.Context, path string) error {

	q := url.Values{}
	q.Set("path", path)

	return c.do(ctx, http.MethodDelete, "/api/images?"+q.Encode(), nil, nil, true)
}

func (c *HTTPClient) UploadImage(ctx context.Context, presignedURL string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return netx.UploadToPresignedURL(ctx, presignedURL, data, contentType)
}
