package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/config"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubManager struct {
	repomanager.RepositoryManager
	migrateErr error
}

func (m stubManager) RunMigrations(context.Context, *sql.DB) error { return m.migrateErr }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func withSeams(t *testing.T, migrateErr error) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origManager := openDB, newRepositoryManager
	t.Cleanup(func() { openDB, newRepositoryManager = origOpen, origManager })

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return stubManager{migrateErr: migrateErr} }
	return mock
}

func TestNewApp_MigrationFailure(t *testing.T) {
	mock := withSeams(t, errors.New("dirty database version 3"))
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty database version 3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_OpenFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	assert.ErrorContains(t, err, "db init error")
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	mock := withSeams(t, nil)
	mock.ExpectClose()

	addrs := make(chan string, 1)
	origListen := listen
	t.Cleanup(func() { listen = origListen })
	listen = func(addr string) (net.Listener, error) {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			addrs <- ln.Addr().String()
		}
		return ln, err
	}

	app, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	addr := <-addrs
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ListenFailure(t *testing.T) {
	mock := withSeams(t, nil)
	mock.ExpectClose()

	origListen := listen
	t.Cleanup(func() { listen = origListen })
	listen = func(string) (net.Listener, error) { return nil, errors.New("address in use") }

	app, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)
	assert.ErrorContains(t, app.Run(context.Background()), "address in use")
	require.NoError(t, mock.ExpectationsWereMet())
}

type countingPurger struct {
	calls chan struct{}
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(context.Context) (int64, error) {
	select {
	case p.calls <- struct{}{}:
	default:
	}
	return 3, p.err
}

func TestSweepSessions(t *testing.T) {
	for _, purgeErr := range []error{nil, errors.New("db down")} {
		p := &countingPurger{calls: make(chan struct{}, 1), err: purgeErr}
		app := &App{logger: logging.Nop(), sessions: p}

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			app.sweepSessions(ctx, 5*time.Millisecond)
			close(stopped)
		}()

		select {
		case <-p.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep never ran")
		}
		cancel()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep did not stop on cancel")
		}
	}
}
