package session

import (
	"fmt"
	"net/url"
	"strings"

	sqliteDialector "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type dialect struct {
	label string
	open  func(databaseURL string, scheme string) (gorm.Dialector, error)
}

var dialectsByScheme = map[string]dialect{
	"postgres":   {label: "postgres", open: openPostgres},
	"postgresql": {label: "postgres", open: openPostgres},
	"sqlite":     {label: "sqlite", open: openSQLite},
	"sqlite3":    {label: "sqlite", open: openSQLite},
}

// openDialector picks the gorm dialector for the URL scheme and returns it
// with the driver label used in error codes.
func openDialector(databaseURL string) (gorm.Dialector, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, "", fmt.Errorf("session_store.parse_url: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		return nil, "", fmt.Errorf("session_store.dialect: %w", errUnsupportedNoScheme)
	}
	selected, known := dialectsByScheme[scheme]
	if !known {
		return nil, "", fmt.Errorf("session_store.dialect.%s: %w", scheme, ErrUnsupportedDialect)
	}
	dialector, openErr := selected.open(strings.TrimSpace(databaseURL), scheme)
	if openErr != nil {
		return nil, "", fmt.Errorf("session_store.dialect.%s: %w", selected.label, openErr)
	}
	return dialector, selected.label, nil
}

func openPostgres(databaseURL string, scheme string) (gorm.Dialector, error) {
	return postgres.Open(databaseURL), nil
}

func openSQLite(databaseURL string, scheme string) (gorm.Dialector, error) {
	dsn, err := sqliteDSN(databaseURL, scheme)
	if err != nil {
		return nil, err
	}
	return sqliteDialector.Open(dsn), nil
}

// sqliteDSN strips the scheme, so sqlite:///var/db.sqlite, sqlite://db.sqlite
// and sqlite:db.sqlite all reach the driver as a file path with any query.
func sqliteDSN(databaseURL string, scheme string) (string, error) {
	dsn := strings.TrimPrefix(databaseURL[len(scheme)+1:], "//")
	if dsn == "" || strings.HasPrefix(dsn, "?") {
		return "", errSQLiteEmptyPath
	}
	return dsn, nil
}
