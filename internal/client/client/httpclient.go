package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
)

// HTTPClient talks JSON over HTTP to the trailfield sync server. Expired
// access tokens are refreshed once and the original request replayed,
// mirroring the usual interceptor pattern.
type HTTPClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens restores a cached session (offline login reuse).
func (c *HTTPClient) SetTokens(access, refresh string) {
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current session tokens so callers can cache them.
func (c *HTTPClient) Tokens() (access, refresh string) {
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) Close() error { return nil }

type loginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Owner        models.Owner `json:"owner"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password, email, displayName string) error {
	body := map[string]string{
		"username": username, "password": password,
		"email": email, "display_name": displayName,
	}
	return c.postJSON(ctx, "/api/register", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Owner, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.postJSON(ctx, "/api/login", body, &resp); err != nil {
		return models.Anonymous, err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return resp.Owner, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) WriteRecord(ctx context.Context, collection string, body []byte) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.doAuthorized(ctx, http.MethodPost, "/api/records/"+collection, body, "application/json", &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *HTTPClient) PresignUpload(ctx context.Context) (*UploadTarget, error) {
	var resp struct {
		Key       string `json:"key"`
		PutURL    string `json:"put_url"`
		PublicURL string `json:"public_url"`
	}
	err := c.doAuthorized(ctx, http.MethodPost, "/api/uploads/presign", nil, "application/json", &resp)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{Key: resp.Key, PutURL: resp.PutURL, PublicURL: resp.PublicURL}, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, b, "application/json", "", out)
}

// doAuthorized performs an authenticated request, refreshing the access
// token once when the server reports it expired.
func (c *HTTPClient) doAuthorized(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	err := c.do(ctx, method, path, body, contentType, c.accessToken, out)
	if err == nil {
		return nil
	}

	var se *statusError
	if !asStatusError(err, &se) || se.code != http.StatusUnauthorized || se.message != common.ErrTokenExpired.Error() {
		return mapError(err)
	}
	if c.refreshToken == "" {
		return mapError(err)
	}

	if rErr := c.refresh(ctx); rErr != nil {
		return mapError(err)
	}
	return mapError(c.do(ctx, method, path, body, contentType, c.accessToken, out))
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	b, err := json.Marshal(map[string]string{"refresh_token": c.refreshToken})
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/api/refresh", b, "application/json", "", &resp); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

// statusError carries an HTTP status and the server's error message so the
// caller can map it onto sentinels.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.message)
}

func asStatusError(err error, target **statusError) bool {
	se, ok := err.(*statusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, contentType, token string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(b, &apiErr)
		return &statusError{code: resp.StatusCode, message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapError converts transport-level failures into the sentinels the sync
// core classifies on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *statusError
	if asStatusError(err, &se) {
		switch {
		case se.code == http.StatusUnauthorized || se.code == http.StatusForbidden:
			return ErrUnauthorized
		case se.code == http.StatusRequestEntityTooLarge:
			return common.ErrPayloadTooLarge
		case se.code >= 500 || se.code == http.StatusRequestTimeout:
			return ErrUnavailable
		default:
			return fmt.Errorf("api error: %w", err)
		}
	}
	return err
}
