package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/storefront/internal/telemetry"
	"github.com/tyemirov/storefront/pkg/tokenclaims"
	"go.uber.org/zap"
)

// Store persists the Session Record through a Storage port.
type Store struct {
	storage Storage
	logger  *zap.Logger
	metrics telemetry.MetricsRecorder
	expiry  *tokenclaims.Inspector
	decoder *tokenclaims.Inspector
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(store *Store) {
		if logger != nil {
			store.logger = logger
		}
	}
}

// WithMetrics sets the recorder for session events.
func WithMetrics(recorder telemetry.MetricsRecorder) Option {
	return func(store *Store) {
		if recorder != nil {
			store.metrics = recorder
		}
	}
}

// WithExpiryCheck makes Read treat a JWT-shaped token past its exp claim
// as no session at all, clearing it from storage. Guards, API clients and
// display code then agree on a single decision.
func WithExpiryCheck(inspector *tokenclaims.Inspector) Option {
	return func(store *Store) {
		store.expiry = inspector
	}
}

// NewStore constructs a Store on top of storage.
func NewStore(storage Storage, options ...Option) *Store {
	if storage == nil {
		panic("session storage is required")
	}
	store := &Store{
		storage: storage,
		logger:  zap.NewNop(),
		metrics: telemetry.NopMetrics(),
		decoder: tokenclaims.New(tokenclaims.Config{}),
	}
	for _, option := range options {
		option(store)
	}
	return store
}

// Save writes every field of record as an independent key.
//
// Writes are not atomic. When a write fails the keys written before it
// stay in place and the error is returned.
func (store *Store) Save(ctx context.Context, record Record) error {
	if strings.TrimSpace(record.Token) == "" {
		store.metrics.Increment(telemetry.EventSessionSaveFailure)
		return fmt.Errorf("session.save: %w", ErrMissingToken)
	}
	values := record.values()
	for index, key := range recordKeys {
		var writeErr error
		if values[index] == "" {
			writeErr = store.storage.Delete(ctx, key)
		} else {
			writeErr = store.storage.Set(ctx, key, values[index])
		}
		if writeErr != nil {
			store.metrics.Increment(telemetry.EventSessionSaveFailure)
			return fmt.Errorf("session.save.%s: %w", key, writeErr)
		}
	}
	store.metrics.Increment(telemetry.EventSessionSaved)
	return nil
}

// Read reconstructs the current record, or returns nil when there is no token.
func (store *Store) Read(ctx context.Context) (*Record, error) {
	token, found, getErr := store.storage.Get(ctx, KeyToken)
	if getErr != nil {
		return nil, fmt.Errorf("session.read.%s: %w", KeyToken, getErr)
	}

	var record *Record
	if found && strings.TrimSpace(token) != "" {
		loaded, loadErr := store.load(ctx, token)
		if loadErr != nil {
			return nil, loadErr
		}
		record = loaded
	} else {
		migrated, migrateErr := store.migrateLegacy(ctx)
		if migrateErr != nil {
			return nil, migrateErr
		}
		if migrated == nil {
			return nil, nil
		}
		record = migrated
	}

	if store.expiry != nil && store.expiry.Expired(record.Token) {
		store.metrics.Increment(telemetry.EventSessionExpired)
		store.logger.Info("session token expired; clearing session",
			zap.String("code", "session.expired"),
			zap.String("user_id", record.UserID))
		if clearErr := store.Clear(ctx); clearErr != nil {
			store.logger.Warn("failed to clear expired session",
				zap.String("code", "session.expired.clear_failed"),
				zap.Error(clearErr))
		}
		return nil, nil
	}
	return record, nil
}

// Clear deletes every known key. It succeeds when no session exists.
func (store *Store) Clear(ctx context.Context) error {
	err := store.deleteAll(ctx, "session.clear")
	store.metrics.Increment(telemetry.EventSessionCleared)
	return err
}

// Renew moves Renewer storage to a freshly issued identifier after
// deleting the keys held under the old one. Other storage is left alone
// since the next Save overwrites it. Sign-in flows call Renew before saving
// a new token so a planted identifier never becomes authenticated.
func (store *Store) Renew(ctx context.Context) error {
	renewer, ok := store.storage.(Renewer)
	if !ok {
		return nil
	}
	if err := store.deleteAll(ctx, "session.renew"); err != nil {
		return err
	}
	if err := renewer.Renew(ctx); err != nil {
		return fmt.Errorf("session.renew: %w", err)
	}
	store.metrics.Increment(telemetry.EventSessionRenewed)
	return nil
}

func (store *Store) deleteAll(ctx context.Context, operation string) error {
	var deleteErrs []error
	for _, key := range append(append([]string{}, recordKeys...), legacyKeys...) {
		if err := store.storage.Delete(ctx, key); err != nil {
			deleteErrs = append(deleteErrs, fmt.Errorf("%s.%s: %w", operation, key, err))
		}
	}
	return errors.Join(deleteErrs...)
}

// IsAuthenticated reports whether a token is present. Storage failures
// count as unauthenticated.
func (store *Store) IsAuthenticated(ctx context.Context) bool {
	record, err := store.Read(ctx)
	if err != nil {
		store.logger.Warn("session read failed",
			zap.String("code", "session.read_failed"),
			zap.Error(err))
		return false
	}
	return record != nil
}

// Token returns the bearer token, or an empty string without a session.
func (store *Store) Token(ctx context.Context) (string, error) {
	record, err := store.Read(ctx)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", nil
	}
	return record.Token, nil
}

// DisplayName picks a name to greet the user with: the stored full name,
// then a name decoded from the token, then the email.
func (store *Store) DisplayName(ctx context.Context) string {
	record, err := store.Read(ctx)
	if err != nil || record == nil {
		return ""
	}
	if strings.TrimSpace(record.FullName) != "" {
		return record.FullName
	}
	if claims, decodeErr := store.decoder.Decode(record.Token); decodeErr == nil {
		if name := claims.GetDisplayName(); name != "" {
			return name
		}
	}
	return record.Email
}

func (store *Store) load(ctx context.Context, token string) (*Record, error) {
	record := &Record{Token: token}
	targets := []*string{&record.Email, &record.Role, &record.UserID, &record.FullName}
	for index, key := range recordKeys[1:] {
		value, _, getErr := store.storage.Get(ctx, key)
		if getErr != nil {
			return nil, fmt.Errorf("session.read.%s: %w", key, getErr)
		}
		*targets[index] = value
	}
	if strings.TrimSpace(record.Role) == "" {
		record.Role = DefaultRole
	}
	return record, nil
}

func (store *Store) migrateLegacy(ctx context.Context) (*Record, error) {
	legacyToken, found, getErr := store.storage.Get(ctx, legacyKeyToken)
	if getErr != nil {
		return nil, fmt.Errorf("session.migrate.%s: %w", legacyKeyToken, getErr)
	}
	if !found || strings.TrimSpace(legacyToken) == "" {
		return nil, nil
	}
	record := Record{Token: legacyToken}
	if record.Email, _, getErr = store.storage.Get(ctx, legacyKeyEmail); getErr != nil {
		return nil, fmt.Errorf("session.migrate.%s: %w", legacyKeyEmail, getErr)
	}
	if record.Role, _, getErr = store.storage.Get(ctx, legacyKeyRole); getErr != nil {
		return nil, fmt.Errorf("session.migrate.%s: %w", legacyKeyRole, getErr)
	}
	if saveErr := store.Save(ctx, record); saveErr != nil {
		return nil, fmt.Errorf("session.migrate: %w", saveErr)
	}
	for _, key := range legacyKeys {
		if deleteErr := store.storage.Delete(ctx, key); deleteErr != nil {
			return nil, fmt.Errorf("session.migrate.%s: %w", key, deleteErr)
		}
	}
	store.metrics.Increment(telemetry.EventSessionMigrated)
	store.logger.Info("migrated legacy session keys", zap.String("code", "session.legacy_migrated"))
	if strings.TrimSpace(record.Role) == "" {
		record.Role = DefaultRole
	}
	return &record, nil
}
