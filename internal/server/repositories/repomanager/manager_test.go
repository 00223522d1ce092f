package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/s-fanou/feed/internal/server/config"
	"github.com/s-fanou/feed/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	cfg.StoreKind = config.StoreMemory
	m, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)

	cfg.StoreKind = config.StorePostgres
	m, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)
	require.NoError(t, m.Close(context.Background()))

	cfg.StoreKind = "sqlite"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_MongoDoesNotDial(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreKind = config.StoreMongo

	m, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MongoRepositoryManager{}, m)

	var _ users.Repository = m.Users()
	assert.IsType(t, &users.MongoRepository{}, m.Users())
}

func TestPostgresManager_Users(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := newPostgresManager(db)
	assert.IsType(t, &users.PostgresRepository{}, m.Users())
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := newPostgresManager(db).RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := newPostgresManager(db).RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestPostgresManager_Close(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()

	require.NoError(t, newPostgresManager(db).Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryManager(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx := context.Background()

	require.NoError(t, m.RunMigrations(ctx))
	assert.Same(t, m.Users(), m.Users())
	assert.NoError(t, m.Close(ctx))
}
