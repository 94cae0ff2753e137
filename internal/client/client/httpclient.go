package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/netx"
)

// HTTPClient talks JSON over HTTP to the account service. It is safe for
// concurrent use: token state is guarded by a mutex, and concurrent renewals
// collapse into a single request via singleflight.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	renewGroup singleflight.Group
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

func (c *HTTPClient) Tokens() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

// send performs one HTTP round trip. An empty accessToken sends the request
// unauthenticated; a non-empty withRefresh attaches the refresh cookie.
func (c *HTTPClient) send(ctx context.Context, method, path string, body any, accessToken, withRefresh string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)
	}
	if withRefresh != "" {
		req.AddCookie(&http.Cookie{Name: common.RefreshTokenCookieName, Value: withRefresh})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServerUnavailable, err)
	}
	return resp, nil
}

// errorMessage drains the response body and extracts the server's message.
func errorMessage(resp *http.Response) string {
	defer resp.Body.Close()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}

func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mapStatus(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorInvalidEntry, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, message)
	}
}

// callAuthed performs an authenticated request. When the server answers 401
// with the token-expired message, the access token is renewed exactly once
// (shared across concurrent callers) and the request is retried with the new
// token. A second authentication failure means the session is gone.
func (c *HTTPClient) callAuthed(ctx context.Context, method, path string, body any, out any) error {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	resp, err := c.send(ctx, method, path, body, token, "")
	if err != nil {
		return err
	}
	if resp.StatusCode < 300 {
		return decodeBody(resp, out)
	}

	status := resp.StatusCode
	message := errorMessage(resp)

	if status != http.StatusUnauthorized || message != common.ErrTokenExpired.Error() {
		return mapStatus(status, message)
	}

	newToken, err := c.renewShared(ctx)
	if err != nil {
		return common.ErrSessionExpired
	}

	resp, err = c.send(ctx, method, path, body, newToken, "")
	if err != nil {
		return err
	}
	if resp.StatusCode < 300 {
		return decodeBody(resp, out)
	}
	status = resp.StatusCode
	message = errorMessage(resp)
	if status == http.StatusUnauthorized {
		return common.ErrSessionExpired
	}
	return mapStatus(status, message)
}

// renewShared exchanges the refresh token for a fresh access token. All
// concurrent callers share one in-flight renewal.
func (c *HTTPClient) renewShared(ctx context.Context) (string, error) {
	v, err, _ := c.renewGroup.Do("renew", func() (any, error) {
		c.mu.RLock()
		refresh := c.refreshToken
		c.mu.RUnlock()

		if refresh == "" {
			return "", common.ErrSessionExpired
		}

		resp, err := c.send(ctx, http.MethodPost, "/refresh-token", nil, "", refresh)
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			_ = errorMessage(resp)
			return "", common.ErrSessionExpired
		}

		var body struct {
			AccessToken string `json:"accessToken"`
		}
		if err := decodeBody(resp, &body); err != nil {
			return "", err
		}

		c.mu.Lock()
		c.accessToken = body.AccessToken
		c.mu.Unlock()

		return body.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *HTTPClient) Signup(ctx context.Context, form SignupForm) (*SignupOutcome, error) {
	resp, err := c.send(ctx, http.MethodPost, "/signup", form, "", "")
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		_ = decodeBody(resp, nil)
		return &SignupOutcome{Created: true}, nil
	case http.StatusOK:
		var body struct {
			Action  string `json:"action"`
			Message string `json:"message"`
			UserID  string `json:"userId"`
		}
		if err := decodeBody(resp, &body); err != nil {
			return nil, err
		}
		return &SignupOutcome{Restorable: true, Message: body.Message, UserID: body.UserID}, nil
	default:
		return nil, mapStatus(resp.StatusCode, errorMessage(resp))
	}
}

// Restore reactivates a soft-deleted account. The server restores by email
// alone; the account keeps the password it had before deletion.
func (c *HTTPClient) Restore(ctx context.Context, email string) error {
	body := map[string]string{"email": email}

	resp, err := c.send(ctx, http.MethodPost, "/restore-account", body, "", "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp.StatusCode, errorMessage(resp))
	}
	return decodeBody(resp, nil)
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string, persist bool) (*Session, error) {
	body := map[string]any{"email": email, "password": password, "persist": persist}

	resp, err := c.send(ctx, http.MethodPost, "/signin", body, "", "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mapStatus(resp.StatusCode, errorMessage(resp))
	}

	session := &Session{}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == common.RefreshTokenCookieName {
			session.RefreshToken = cookie.Value
		}
	}

	var respBody struct {
		AccessToken string   `json:"accessToken"`
		UserID      string   `json:"userId"`
		Roles       []string `json:"roles"`
	}
	if err := decodeBody(resp, &respBody); err != nil {
		return nil, err
	}
	session.AccessToken = respBody.AccessToken
	session.UserID = respBody.UserID
	session.Roles = respBody.Roles

	c.SetTokens(session.AccessToken, session.RefreshToken)

	return session, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()

	resp, err := c.send(ctx, http.MethodPost, "/signout", nil, "", refresh)
	if err != nil {
		return err
	}
	_ = decodeBody(resp, nil)

	c.SetTokens("", "")
	return nil
}

// RequestPasswordReset asks the server to email a reset link. The server
// answers 403 when the email is unknown; that is surfaced as "not found"
// rather than an authorization failure.
func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.send(ctx, http.MethodPost, "/reset-password-request", map[string]string{"email": email}, "", "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return decodeBody(resp, nil)
	case http.StatusForbidden:
		_ = errorMessage(resp)
		return common.ErrorNotFound
	default:
		return mapStatus(resp.StatusCode, errorMessage(resp))
	}
}

func (c *HTTPClient) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}

	resp, err := c.send(ctx, http.MethodPost, "/reset-password", body, "", "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp.StatusCode, errorMessage(resp))
	}
	return decodeBody(resp, nil)
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.callAuthed(ctx, http.MethodGet, "/users/"+userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, form UpdateUserForm) error {
	return c.callAuthed(ctx, http.MethodPut, "/users", form, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID string) error {
	return c.callAuthed(ctx, http.MethodDelete, "/users/"+userID, nil, nil)
}

// UploadProfilePicture asks the server for a presigned PUT URL and uploads
// the image bytes directly to object storage.
func (c *HTTPClient) UploadProfilePicture(ctx context.Context, userID string, image []byte) error {
	var body struct {
		URL string `json:"url"`
	}
	err := c.callAuthed(ctx, http.MethodPost, "/users/"+userID+"/profile-picture/upload-url", nil, &body)
	if err != nil {
		return err
	}
	return netx.UploadToS3PresignedURL(ctx, body.URL, image)
}

func (c *HTTPClient) ProfileImageURL(ctx context.Context, userID string) (string, error) {
	var body struct {
		URL string `json:"url"`
	}
	err := c.callAuthed(ctx, http.MethodGet, "/users/"+userID+"/profile-picture", nil, &body)
	if err != nil {
		return "", err
	}
	return body.URL, nil
}
