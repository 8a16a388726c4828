package baas

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// User is the auth record held by the BaaS.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// EmailConfirmed reports whether the user has verified their address.
func (u User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

// Session is an issued token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expiry returns when the access token expires.
func (s Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

// SignUpParams registers a new email/password account.
type SignUpParams struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUpResult carries the created user and, when the project does not
// require email confirmation, an active session.
type SignUpResult struct {
	User    User
	Session *Session
}

// signUpResponse is either a session (confirmation off) or a bare user.
type signUpResponse struct {
	Session
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (c *Client) SignUp(ctx context.Context, params SignUpParams) (*SignUpResult, error) {
	var resp signUpResponse
	if _, err := c.do(ctx, request{method: http.MethodPost, path: authPrefix + "/signup", body: params}, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		session := resp.Session
		return &SignUpResult{User: session.User, Session: &session}, nil
	}
	return &SignUpResult{User: User{
		ID:               resp.ID,
		Email:            resp.Email,
		EmailConfirmedAt: resp.EmailConfirmedAt,
		UserMetadata:     resp.UserMetadata,
		CreatedAt:        resp.CreatedAt,
	}}, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession exchanges a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": refreshToken},
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// OTP types accepted by VerifyOTP and Resend.
const (
	OTPTypeSignup = "signup"
	OTPTypeEmail  = "email"
)

// VerifyOTP confirms an email with the code sent by the BaaS and returns the
// resulting session.
func (c *Client) VerifyOTP(ctx context.Context, otpType, email, token string) (*Session, error) {
	var session Session
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/verify",
		body:   map[string]string{"type": otpType, "email": email, "token": token},
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Resend asks the BaaS to send the confirmation email again.
func (c *Client) Resend(ctx context.Context, otpType, email string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/resend",
		body:   map[string]string{"type": otpType, "email": email},
	}, nil)
	return err
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "/logout",
		token:  accessToken,
	}, nil)
	return err
}

// GetUser returns the user that owns accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   authPrefix + "/user",
		token:  accessToken,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
