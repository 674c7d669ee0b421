// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/migrations"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/adminlogs"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/categories"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/chatlogs"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/credentialkeys"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/dashboardusers"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/labels"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/payments"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/photojobs"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/plans"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/storeroles"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/stores"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Plans(db dbx.DBTX) plans.Repository {
	return plans.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return subscriptions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) CredentialKeys(db dbx.DBTX) credentialkeys.Repository {
	return credentialkeys.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Payments(db dbx.DBTX) payments.Repository {
	return payments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Stores(db dbx.DBTX) stores.Repository {
	return stores.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) StoreRoles(db dbx.DBTX) storeroles.Repository {
	return storeroles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) DashboardUsers(db dbx.DBTX) dashboardusers.Repository {
	return dashboardusers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PhotoJobs(db dbx.DBTX) photojobs.Repository {
	return photojobs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Labels(db dbx.DBTX) labels.Repository {
	return labels.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ChatLogs(db dbx.DBTX) chatlogs.Repository {
	return chatlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AdminLogs(db dbx.DBTX) adminlogs.Repository {
	return adminlogs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
