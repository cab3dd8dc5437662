package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const authPath = "/api/auth"

// User is the account as the backend reports it.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

// AuthResponse is returned by every sign-in flavour.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignInRequest carries credentials for password sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest registers a new account.
type SignUpRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Auth wraps /api/auth.
type Auth struct {
	client *Client
}

// SignIn exchanges credentials for a token.
func (auth *Auth) SignIn(ctx context.Context, request SignInRequest) (*AuthResponse, error) {
	return auth.authenticate(ctx, "/login", request)
}

// SignUp registers an account and returns its first token.
func (auth *Auth) SignUp(ctx context.Context, request SignUpRequest) (*AuthResponse, error) {
	return auth.authenticate(ctx, "/register", request)
}

// GoogleSignIn exchanges a Google credential for a token. The backend
// verifies the credential.
func (auth *Auth) GoogleSignIn(ctx context.Context, credential string) (*AuthResponse, error) {
	return auth.authenticate(ctx, "/google", map[string]string{"credential": credential})
}

// CurrentUser returns the account that owns the bearer token.
func (auth *Auth) CurrentUser(ctx context.Context) (*User, error) {
	var payload json.RawMessage
	if err := auth.client.do(ctx, http.MethodGet, authPath+"/me", nil, nil, &payload); err != nil {
		return nil, err
	}
	return decodeUser(payload)
}

// UpdateProfile changes the profile and returns the updated account.
func (auth *Auth) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var payload json.RawMessage
	if err := auth.client.do(ctx, http.MethodPut, authPath+"/profile", nil, update, &payload); err != nil {
		return nil, err
	}
	return decodeUser(payload)
}

// ForgotPassword asks the backend to mail a reset link.
func (auth *Auth) ForgotPassword(ctx context.Context, email string) (*Acknowledgement, error) {
	var acknowledgement Acknowledgement
	if err := auth.client.do(ctx, http.MethodPost, authPath+"/forgot-password", nil, map[string]string{"email": email}, &acknowledgement); err != nil {
		return nil, err
	}
	return &acknowledgement, nil
}

// VerifyResetToken checks that a reset link is still valid.
func (auth *Auth) VerifyResetToken(ctx context.Context, token string) (*Acknowledgement, error) {
	var acknowledgement Acknowledgement
	if err := auth.client.do(ctx, http.MethodGet, authPath+"/reset-password/"+url.PathEscape(token), nil, nil, &acknowledgement); err != nil {
		return nil, err
	}
	return &acknowledgement, nil
}

// ResetPassword sets a new password using a reset link token.
func (auth *Auth) ResetPassword(ctx context.Context, token string, password string) (*Acknowledgement, error) {
	var acknowledgement Acknowledgement
	if err := auth.client.do(ctx, http.MethodPost, authPath+"/reset-password/"+url.PathEscape(token), nil, map[string]string{"password": password}, &acknowledgement); err != nil {
		return nil, err
	}
	return &acknowledgement, nil
}

func (auth *Auth) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var response AuthResponse
	if err := auth.client.do(ctx, http.MethodPost, authPath+path, nil, body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// decodeUser accepts both {"user": {...}} and a bare user object.
func decodeUser(payload json.RawMessage) (*User, error) {
	var envelope struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("apiclient.decode: %w", err)
	}
	if envelope.User != nil {
		return envelope.User, nil
	}
	var user User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("apiclient.decode: %w", err)
	}
	return &user, nil
}
