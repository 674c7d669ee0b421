package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lirra/internal/dbx"
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
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Plans(db dbx.DBTX) plans.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	CredentialKeys(db dbx.DBTX) credentialkeys.Repository
	Payments(db dbx.DBTX) payments.Repository
	Stores(db dbx.DBTX) stores.Repository
	StoreRoles(db dbx.DBTX) storeroles.Repository
	DashboardUsers(db dbx.DBTX) dashboardusers.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Categories(db dbx.DBTX) categories.Repository
	PhotoJobs(db dbx.DBTX) photojobs.Repository
	Labels(db dbx.DBTX) labels.Repository
	ChatLogs(db dbx.DBTX) chatlogs.Repository
	AdminLogs(db dbx.DBTX) adminlogs.Repository
}
