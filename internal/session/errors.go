package session

import "errors"

var (
	// ErrMissingToken indicates a save was attempted without a bearer token.
	ErrMissingToken = errors.New("session.missing_token")
	// ErrUnsupportedDialect indicates that no GORM dialector is available for the scheme.
	ErrUnsupportedDialect = errors.New("session_store.unsupported_dialect")

	errEmptyDatabaseURL    = errors.New("session_store.empty_database_url")
	errSQLiteEmptyPath     = errors.New("session_store.sqlite.empty_path")
	errUnsupportedNoScheme = errors.New("session_store.unsupported_no_scheme")
)
