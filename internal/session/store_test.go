package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tyemirov/storefront/internal/telemetry"
	"github.com/tyemirov/storefront/pkg/tokenclaims"
	"go.uber.org/zap/zaptest"
)

type fixedClock struct {
	current time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.current
}

type failingStorage struct {
	Storage
	failSetKey    string
	failDeleteKey string
	failGet       bool
}

var errStorageUnavailable = errors.New("storage unavailable")

func (storage *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if storage.failGet {
		return "", false, errStorageUnavailable
	}
	return storage.Storage.Get(ctx, key)
}

func (storage *failingStorage) Set(ctx context.Context, key string, value string) error {
	if key == storage.failSetKey {
		return errStorageUnavailable
	}
	return storage.Storage.Set(ctx, key, value)
}

func (storage *failingStorage) Delete(ctx context.Context, key string) error {
	if key == storage.failDeleteKey {
		return errStorageUnavailable
	}
	return storage.Storage.Delete(ctx, key)
}

func mintJWT(t *testing.T, claims tokenclaims.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestSaveReadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryStorage(), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	testCases := []struct {
		name     string
		input    Record
		expected Record
	}{
		{
			name:     "explicit admin role",
			input:    Record{Token: "abc", Email: "a@b.com", Role: "admin"},
			expected: Record{Token: "abc", Email: "a@b.com", Role: "admin"},
		},
		{
			name:     "missing role defaults to user",
			input:    Record{Token: "abc", Email: "a@b.com"},
			expected: Record{Token: "abc", Email: "a@b.com", Role: DefaultRole},
		},
		{
			name:     "optional fields",
			input:    Record{Token: "def", Email: "c@d.com", Role: "user", UserID: "u-1", FullName: "Casey Doe"},
			expected: Record{Token: "def", Email: "c@d.com", Role: "user", UserID: "u-1", FullName: "Casey Doe"},
		},
	}

	for _, testCase := range testCases {
		if err := store.Save(ctx, testCase.input); err != nil {
			t.Fatalf("%s: save failed: %v", testCase.name, err)
		}
		record, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("%s: read failed: %v", testCase.name, err)
		}
		if record == nil || *record != testCase.expected {
			t.Fatalf("%s: expected %#v, got %#v", testCase.name, testCase.expected, record)
		}
	}
}

func TestSaveOverwritesOptionalFields(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryStorage())
	ctx := context.Background()

	if err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com", UserID: "u-1", FullName: "Full"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com"}); err != nil {
		t.Fatalf("resave failed: %v", err)
	}
	record, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if record.UserID != "" || record.FullName != "" {
		t.Fatalf("expected full overwrite, got %#v", record)
	}
}

func TestSaveRequiresToken(t *testing.T) {
	t.Parallel()

	metrics := telemetry.NewCounterMetrics()
	store := NewStore(NewMemoryStorage(), WithMetrics(metrics))
	err := store.Save(context.Background(), Record{Email: "a@b.com"})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if metrics.Count(telemetry.EventSessionSaveFailure) != 1 {
		t.Fatalf("expected save failure metric")
	}
}

func TestReadWithoutSession(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryStorage())
	ctx := context.Background()

	if store.IsAuthenticated(ctx) {
		t.Fatalf("expected unauthenticated without prior save")
	}
	record, err := store.Read(ctx)
	if err != nil || record != nil {
		t.Fatalf("expected nil record, got %#v, %v", record, err)
	}
	token, tokenErr := store.Token(ctx)
	if tokenErr != nil || token != "" {
		t.Fatalf("expected empty token, got %q, %v", token, tokenErr)
	}
}

func TestReadTreatsBlankTokenAsNoSession(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	ctx := context.Background()
	_ = storage.Set(ctx, KeyToken, "   ")
	_ = storage.Set(ctx, KeyEmail, "a@b.com")

	store := NewStore(storage)
	if store.IsAuthenticated(ctx) {
		t.Fatalf("blank token must not authenticate")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	metrics := telemetry.NewCounterMetrics()
	store := NewStore(NewMemoryStorage(), WithMetrics(metrics))
	ctx := context.Background()

	if err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	for attempt := 0; attempt < 2; attempt++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear %d failed: %v", attempt, err)
		}
		if store.IsAuthenticated(ctx) {
			t.Fatalf("expected unauthenticated after clear %d", attempt)
		}
	}
	if metrics.Count(telemetry.EventSessionCleared) != 2 {
		t.Fatalf("expected two clear events, got %d", metrics.Count(telemetry.EventSessionCleared))
	}
}

func TestClearJoinsDeleteErrors(t *testing.T) {
	t.Parallel()

	storage := &failingStorage{Storage: NewMemoryStorage(), failDeleteKey: KeyRole}
	store := NewStore(storage)
	err := store.Clear(context.Background())
	if !errors.Is(err, errStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestPartialSaveLeavesWrittenKeys(t *testing.T) {
	t.Parallel()

	storage := &failingStorage{Storage: NewMemoryStorage(), failSetKey: KeyRole}
	store := NewStore(storage)
	ctx := context.Background()

	err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com", Role: "admin"})
	if !errors.Is(err, errStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}

	record, readErr := store.Read(ctx)
	if readErr != nil {
		t.Fatalf("read failed: %v", readErr)
	}
	if record == nil || record.Token != "abc" {
		t.Fatalf("expected token written before failure to remain, got %#v", record)
	}
	if record.Role != DefaultRole {
		t.Fatalf("expected role to fall back to %q, got %q", DefaultRole, record.Role)
	}
}

func TestStorageReadFailureIsUnauthenticated(t *testing.T) {
	t.Parallel()

	store := NewStore(&failingStorage{Storage: NewMemoryStorage(), failGet: true}, WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	if store.IsAuthenticated(ctx) {
		t.Fatalf("expected storage failure to count as unauthenticated")
	}
	if _, err := store.Token(ctx); !errors.Is(err, errStorageUnavailable) {
		t.Fatalf("expected token lookup to surface storage error, got %v", err)
	}
}

func TestLegacyKeysAreMigrated(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	ctx := context.Background()
	_ = storage.Set(ctx, legacyKeyToken, "legacy-token")
	_ = storage.Set(ctx, legacyKeyEmail, "old@b.com")

	metrics := telemetry.NewCounterMetrics()
	store := NewStore(storage, WithMetrics(metrics))

	record, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	expected := Record{Token: "legacy-token", Email: "old@b.com", Role: DefaultRole}
	if record == nil || *record != expected {
		t.Fatalf("expected %#v, got %#v", expected, record)
	}
	if value, found, _ := storage.Get(ctx, KeyToken); !found || value != "legacy-token" {
		t.Fatalf("expected token under unified key, got %q", value)
	}
	for _, key := range legacyKeys {
		if _, found, _ := storage.Get(ctx, key); found {
			t.Fatalf("expected legacy key %s to be removed", key)
		}
	}
	if metrics.Count(telemetry.EventSessionMigrated) != 1 {
		t.Fatalf("expected migration metric")
	}
}

func TestClearRemovesBothKeySchemes(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	ctx := context.Background()
	_ = storage.Set(ctx, legacyKeyToken, "legacy-token")
	_ = storage.Set(ctx, legacyKeyRole, "admin")
	_ = storage.Set(ctx, KeyToken, "new-token")

	store := NewStore(storage)
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	for _, key := range append(append([]string{}, recordKeys...), legacyKeys...) {
		if _, found, _ := storage.Get(ctx, key); found {
			t.Fatalf("expected key %s to be cleared", key)
		}
	}
}

func TestExpiryCheckClearsExpiredToken(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	expired := mintJWT(t, tokenclaims.Claims{
		Email: "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	})
	ctx := context.Background()
	storage := NewMemoryStorage()
	metrics := telemetry.NewCounterMetrics()

	parity := NewStore(storage)
	if err := parity.Save(ctx, Record{Token: expired, Email: "a@b.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !parity.IsAuthenticated(ctx) {
		t.Fatalf("without the expiry check a present token must authenticate")
	}

	checked := NewStore(storage,
		WithExpiryCheck(tokenclaims.New(tokenclaims.Config{Clock: fixedClock{current: now}})),
		WithMetrics(metrics),
		WithLogger(zaptest.NewLogger(t)))
	if checked.IsAuthenticated(ctx) {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, found, _ := storage.Get(ctx, KeyToken); found {
		t.Fatalf("expected expired session to be cleared from storage")
	}
	if metrics.Count(telemetry.EventSessionExpired) != 1 {
		t.Fatalf("expected expiry metric")
	}
}

func TestExpiryCheckKeepsOpaqueAndLiveTokens(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	inspector := tokenclaims.New(tokenclaims.Config{Clock: fixedClock{current: now}})
	live := mintJWT(t, tokenclaims.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	ctx := context.Background()

	for _, token := range []string{"opaque-token", live} {
		store := NewStore(NewMemoryStorage(), WithExpiryCheck(inspector))
		if err := store.Save(ctx, Record{Token: token, Email: "a@b.com"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if !store.IsAuthenticated(ctx) {
			t.Fatalf("expected token %q to stay authenticated", token)
		}
	}
}

func TestDisplayNamePreference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokenWithName := mintJWT(t, tokenclaims.Claims{FullName: "Token Name"})

	testCases := []struct {
		name     string
		record   *Record
		expected string
	}{
		{name: "no session", record: nil, expected: ""},
		{name: "full name", record: &Record{Token: tokenWithName, Email: "a@b.com", FullName: "Stored Name"}, expected: "Stored Name"},
		{name: "token claim", record: &Record{Token: tokenWithName, Email: "a@b.com"}, expected: "Token Name"},
		{name: "email fallback", record: &Record{Token: "opaque", Email: "a@b.com"}, expected: "a@b.com"},
	}

	for _, testCase := range testCases {
		store := NewStore(NewMemoryStorage())
		if testCase.record != nil {
			if err := store.Save(ctx, *testCase.record); err != nil {
				t.Fatalf("%s: save failed: %v", testCase.name, err)
			}
		}
		if got := store.DisplayName(ctx); got != testCase.expected {
			t.Fatalf("%s: expected %q, got %q", testCase.name, testCase.expected, got)
		}
	}
}

func TestIsAdminIsAdvisory(t *testing.T) {
	t.Parallel()

	var missing *Record
	if missing.IsAdmin() {
		t.Fatalf("nil record must not be admin")
	}
	forged := &Record{Token: "any", Role: AdminRole}
	if !forged.IsAdmin() {
		t.Fatalf("IsAdmin reflects the stored role verbatim")
	}
}

func TestNewStoreRequiresStorage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for nil storage")
		}
	}()
	NewStore(nil)
}

type rotatingStorage struct {
	Storage
	backend *MemoryBackend
	ids     []string
}

func (storage *rotatingStorage) Renew(ctx context.Context) error {
	nextID := fmt.Sprintf("visitor-%d", len(storage.ids)+1)
	storage.ids = append(storage.ids, nextID)
	storage.Storage = storage.backend.Scope(nextID)
	return nil
}

func TestRenewMovesRenewerToFreshScope(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	ctx := context.Background()
	if err := NewStore(backend.Scope("planted")).Save(ctx, Record{Token: "attacker", Email: "x@y.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	storage := &rotatingStorage{Storage: backend.Scope("planted"), backend: backend}
	metrics := telemetry.NewCounterMetrics()
	store := NewStore(storage, WithMetrics(metrics))

	if err := store.Renew(ctx); err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if store.IsAuthenticated(ctx) {
		t.Fatalf("expected the renewed scope to start empty")
	}
	if NewStore(backend.Scope("planted")).IsAuthenticated(ctx) {
		t.Fatalf("expected keys under the old scope to be deleted")
	}
	if err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !NewStore(backend.Scope("visitor-1")).IsAuthenticated(ctx) {
		t.Fatalf("expected the session under the new scope")
	}
	if metrics.Count(telemetry.EventSessionRenewed) != 1 {
		t.Fatalf("expected one renew event, got %d", metrics.Count(telemetry.EventSessionRenewed))
	}
}

func TestRenewLeavesPlainStorageAlone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(NewMemoryStorage())
	if err := store.Save(ctx, Record{Token: "abc", Email: "a@b.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Renew(ctx); err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if !store.IsAuthenticated(ctx) {
		t.Fatalf("expected storage without renewal support to be untouched")
	}
}
