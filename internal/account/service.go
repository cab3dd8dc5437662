// Package account drives the session lifecycle against the backend.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/forms"
	"github.com/tyemirov/storefront/internal/session"
	"go.uber.org/zap"
)

// ErrMissingToken is returned when the backend accepts a sign-in but
// returns no token.
var ErrMissingToken = errors.New("account.missing_token")

// ErrMissingCredential is returned when an OAuth flow reaches us without a credential.
var ErrMissingCredential = errors.New("account.missing_credential")

// Service pairs the auth client with the Session Store it populates.
type Service struct {
	auth   *apiclient.Auth
	store  *session.Store
	logger *zap.Logger
}

// NewService constructs a Service. The auth client must read its bearer
// token from store.
func NewService(auth *apiclient.Auth, store *session.Store, logger *zap.Logger) *Service {
	if auth == nil || store == nil {
		panic("account service requires an auth client and a session store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{auth: auth, store: store, logger: logger}
}

// SignIn exchanges credentials for a session.
func (service *Service) SignIn(ctx context.Context, form forms.SignInForm) (*session.Record, error) {
	response, err := service.auth.SignIn(ctx, form.Request())
	if err != nil {
		return nil, fmt.Errorf("account.sign_in: %w", err)
	}
	return service.establish(ctx, "account.sign_in", response)
}

// SignUp registers an account and signs it in.
func (service *Service) SignUp(ctx context.Context, form forms.SignUpForm) (*session.Record, error) {
	response, err := service.auth.SignUp(ctx, form.Request())
	if err != nil {
		return nil, fmt.Errorf("account.sign_up: %w", err)
	}
	return service.establish(ctx, "account.sign_up", response)
}

// GoogleSignIn exchanges a Google credential for a session.
func (service *Service) GoogleSignIn(ctx context.Context, credential string) (*session.Record, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("account.google_sign_in: %w", ErrMissingCredential)
	}
	response, err := service.auth.GoogleSignIn(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("account.google_sign_in: %w", err)
	}
	return service.establish(ctx, "account.google_sign_in", response)
}

// CompleteOAuthCallback stores a token handed over by the backend's OAuth
// redirect and fills in the rest of the record from the current user.
// Any failure leaves no session behind.
func (service *Service) CompleteOAuthCallback(ctx context.Context, token string) (*session.Record, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("account.oauth_callback: %w", ErrMissingCredential)
	}
	if err := service.store.Renew(ctx); err != nil {
		return nil, fmt.Errorf("account.oauth_callback: %w", err)
	}
	if err := service.store.Save(ctx, session.Record{Token: token}); err != nil {
		service.discard(ctx)
		return nil, fmt.Errorf("account.oauth_callback: %w", err)
	}
	user, err := service.auth.CurrentUser(ctx)
	if err != nil {
		service.discard(ctx)
		return nil, fmt.Errorf("account.oauth_callback: %w", err)
	}
	record := recordFor(token, *user)
	if err := service.store.Save(ctx, record); err != nil {
		service.discard(ctx)
		return nil, fmt.Errorf("account.oauth_callback: %w", err)
	}
	return &record, nil
}

// UpdateProfile changes the profile on the backend and rewrites the whole
// record with the result.
func (service *Service) UpdateProfile(ctx context.Context, form forms.ProfileForm) (*session.Record, error) {
	current, err := service.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("account.update_profile: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("account.update_profile: %w", session.ErrMissingToken)
	}
	user, err := service.auth.UpdateProfile(ctx, form.Update())
	if err != nil {
		return nil, fmt.Errorf("account.update_profile: %w", err)
	}
	if strings.TrimSpace(user.Role) == "" {
		user.Role = current.Role
	}
	record := recordFor(current.Token, *user)
	if err := service.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("account.update_profile: %w", err)
	}
	return &record, nil
}

// SignOut destroys the session. The backend is not notified.
func (service *Service) SignOut(ctx context.Context) error {
	if err := service.store.Clear(ctx); err != nil {
		return fmt.Errorf("account.sign_out: %w", err)
	}
	return nil
}

// ForgotPassword asks the backend to send a reset link.
func (service *Service) ForgotPassword(ctx context.Context, form forms.ForgotPasswordForm) (string, error) {
	acknowledgement, err := service.auth.ForgotPassword(ctx, form.Email)
	if err != nil {
		return "", fmt.Errorf("account.forgot_password: %w", err)
	}
	return acknowledgement.Message, nil
}

// VerifyResetToken checks a reset link before showing the reset form.
func (service *Service) VerifyResetToken(ctx context.Context, token string) error {
	if _, err := service.auth.VerifyResetToken(ctx, token); err != nil {
		return fmt.Errorf("account.verify_reset_token: %w", err)
	}
	return nil
}

// ResetPassword sets a new password. The visitor signs in afterwards.
func (service *Service) ResetPassword(ctx context.Context, token string, form forms.ResetPasswordForm) (string, error) {
	acknowledgement, err := service.auth.ResetPassword(ctx, token, form.Password)
	if err != nil {
		return "", fmt.Errorf("account.reset_password: %w", err)
	}
	return acknowledgement.Message, nil
}

func (service *Service) establish(ctx context.Context, operation string, response *apiclient.AuthResponse) (*session.Record, error) {
	if strings.TrimSpace(response.Token) == "" {
		return nil, fmt.Errorf("%s: %w", operation, ErrMissingToken)
	}
	if err := service.store.Renew(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	record := recordFor(response.Token, response.User)
	if err := service.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	service.logger.Info("session established",
		zap.String("code", operation),
		zap.String("user_id", record.UserID))
	return &record, nil
}

func (service *Service) discard(ctx context.Context) {
	if err := service.store.Clear(ctx); err != nil {
		service.logger.Warn("failed to clear partial session",
			zap.String("code", "account.clear_failed"),
			zap.Error(err))
	}
}

func recordFor(token string, user apiclient.User) session.Record {
	role := user.Role
	if strings.TrimSpace(role) == "" {
		role = session.DefaultRole
	}
	return session.Record{
		Token:    token,
		Email:    user.Email,
		Role:     role,
		UserID:   user.ID,
		FullName: user.FullName,
	}
}
