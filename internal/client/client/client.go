// Package client implements the API client for the account service. It owns
// the session tokens: requests carry the access token, and an expired access
// token is renewed once per burst before the failed call is retried.
package client

import (
	"context"
	"time"
)

// SignupForm carries the fields of a signup attempt.
type SignupForm struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// SignupOutcome reports how a signup attempt ended. When the email belongs to
// a soft-deleted account, Restorable is true and the server proposes
// restoring it instead of creating a new one.
type SignupOutcome struct {
	Created    bool
	Restorable bool
	Message    string
	UserID     string
}

// Session is the authenticated state returned by a successful signin.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Roles        []string
}

// User is the profile returned by GetUser.
type User struct {
	ID         string      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	IsActive   bool        `json:"isActive"`
	IsVerified bool        `json:"isVerified"`
	Location   string      `json:"location,omitempty"`
	Roles      []string    `json:"roles"`
	CreatedAt  time.Time   `json:"createdAt"`
	Logins     []time.Time `json:"logins,omitempty"`
}

// UpdateUserForm carries a partial account update; nil fields stay unchanged.
type UpdateUserForm struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type Client interface {
	Close() error

	Signup(ctx context.Context, form SignupForm) (*SignupOutcome, error)
	Restore(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string, persist bool) (*Session, error)
	SignOut(ctx context.Context) error

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	GetUser(ctx context.Context, userID string) (*User, error)
	UpdateUser(ctx context.Context, form UpdateUserForm) error
	DeleteUser(ctx context.Context, userID string) error

	UploadProfilePicture(ctx context.Context, userID string, image []byte) error
	ProfileImageURL(ctx context.Context, userID string) (string, error)

	// SetTokens seeds a previously saved session, e.g. on startup from the
	// local store. Tokens returns the current pair for persisting.
	SetTokens(accessToken, refreshToken string)
	Tokens() (accessToken, refreshToken string)
}
