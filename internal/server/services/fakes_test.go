package services

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
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

// --- helpers ---

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = orig })
}

// newSQLMockDB returns a sqlmock handle that only serves BEGIN/COMMIT/ROLLBACK;
// the repositories themselves are in-memory fakes.
func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func ptr[T any](v T) *T { return &v }

// memDB is an in-memory stand-in for every repository. Methods named in
// fail return the configured error instead of doing any work.
type memDB struct {
	mu   sync.Mutex
	seq  int
	fail map[string]error

	profiles  map[string]*models.Profile
	refresh   map[string]*models.RefreshToken
	plans     map[string]*models.Plan
	subs      map[string]*models.Subscription
	keys      map[string]*models.CredentialKey
	payments  map[string]*models.PaymentRecord
	stores    map[string]*models.Store
	roles     map[[2]string]string
	staff     map[string]*models.DashboardUser
	txs       map[string]*models.Transaction
	cats      map[string]*models.CustomCategory
	jobs      map[string]*models.PhotoJob
	labels    map[string]*models.GeneratedLabel
	chats     []*models.ChatLog
	adminLogs []*models.AdminLog
}

func newMemDB() *memDB {
	return &memDB{
		fail:     map[string]error{},
		profiles: map[string]*models.Profile{},
		refresh:  map[string]*models.RefreshToken{},
		plans: map[string]*models.Plan{
			models.PlanStarter:      {ID: models.PlanStarter, Name: "Starter", PriceCents: 1900, Currency: "USD", MaxStores: 1, MaxAPICalls: 1000, MaxPhotoJobs: 50, DurationDays: 30},
			models.PlanProfessional: {ID: models.PlanProfessional, Name: "Professional", PriceCents: 4900, Currency: "USD", MaxStores: 5, MaxAPICalls: 10000, MaxPhotoJobs: 500, DurationDays: 30},
			models.PlanEnterprise:   {ID: models.PlanEnterprise, Name: "Enterprise", PriceCents: 14900, Currency: "USD", MaxStores: 50, MaxAPICalls: 0, MaxPhotoJobs: 5000, DurationDays: 30},
		},
		subs:     map[string]*models.Subscription{},
		keys:     map[string]*models.CredentialKey{},
		payments: map[string]*models.PaymentRecord{},
		stores:   map[string]*models.Store{},
		roles:    map[[2]string]string{},
		staff:    map[string]*models.DashboardUser{},
		txs:      map[string]*models.Transaction{},
		cats:     map[string]*models.CustomCategory{},
		jobs:     map[string]*models.PhotoJob{},
		labels:   map[string]*models.GeneratedLabel{},
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memDB) failure(op string) error { return m.fail[op] }

func cp[T any](v *T) *T {
	c := *v
	return &c
}

// seeding helpers

func (m *memDB) addUser(id, role string, active bool) *models.Profile {
	p := &models.Profile{ID: id, Email: id + "@example.com", Role: role, IsActive: active, CreatedAt: testNow}
	m.profiles[id] = p
	return p
}

func (m *memDB) addSubscription(userID, planID string, used int) *models.Subscription {
	s := &models.Subscription{
		ID:           m.nextID("sub"),
		UserID:       userID,
		PlanID:       planID,
		Status:       models.SubscriptionActive,
		StartedAt:    testNow.AddDate(0, 0, -1),
		ExpiresAt:    testNow.AddDate(0, 0, 29),
		APICallsUsed: used,
	}
	m.subs[s.ID] = s
	return s
}

func (m *memDB) addStore(ownerID, tz string) *models.Store {
	st := &models.Store{ID: m.nextID("store"), OwnerID: ownerID, Name: "Shop", Currency: "USD", Timezone: tz}
	m.stores[st.ID] = st
	m.roles[[2]string{st.ID, ownerID}] = models.StoreRoleOwner
	return st
}

func (m *memDB) ownedStores(userID string) int {
	n := 0
	for _, s := range m.stores {
		if s.OwnerID == userID {
			n++
		}
	}
	return n
}

// --- repository manager ---

type memManager struct{ db *memDB }

func newMemManager() (*memManager, *memDB) {
	m := newMemDB()
	return &memManager{db: m}, m
}

func (r *memManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (r *memManager) Users(dbx.DBTX) users.Repository                   { return memUsers{r.db} }
func (r *memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository   { return memRefresh{r.db} }
func (r *memManager) Plans(dbx.DBTX) plans.Repository                   { return memPlans{r.db} }
func (r *memManager) Subscriptions(dbx.DBTX) subscriptions.Repository   { return memSubs{r.db} }
func (r *memManager) CredentialKeys(dbx.DBTX) credentialkeys.Repository { return memKeys{r.db} }
func (r *memManager) Payments(dbx.DBTX) payments.Repository             { return memPayments{r.db} }
func (r *memManager) Stores(dbx.DBTX) stores.Repository                 { return memStores{r.db} }
func (r *memManager) StoreRoles(dbx.DBTX) storeroles.Repository         { return memRoles{r.db} }
func (r *memManager) DashboardUsers(dbx.DBTX) dashboardusers.Repository { return memStaff{r.db} }
func (r *memManager) Transactions(dbx.DBTX) transactions.Repository     { return memTxs{r.db} }
func (r *memManager) Categories(dbx.DBTX) categories.Repository         { return memCats{r.db} }
func (r *memManager) PhotoJobs(dbx.DBTX) photojobs.Repository           { return memJobs{r.db} }
func (r *memManager) Labels(dbx.DBTX) labels.Repository                 { return memLabels{r.db} }
func (r *memManager) ChatLogs(dbx.DBTX) chatlogs.Repository             { return memChats{r.db} }
func (r *memManager) AdminLogs(dbx.DBTX) adminlogs.Repository           { return memAdminLogs{r.db} }

// --- users ---

type memUsers struct{ *memDB }

func (m memUsers) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.profiles {
		if x.Email == p.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := cp(p)
	c.ID = m.nextID("user")
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	m.profiles[c.ID] = c
	return cp(c), nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			return cp(p), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m memUsers) GetByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		return cp(p), nil
	}
	return nil, common.ErrorNotFound
}

func (m memUsers) Lock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (m memUsers) List(_ context.Context, f models.ProfileFilter) ([]*models.Profile, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Profile
	for _, p := range m.profiles {
		if f.Search == "" || strings.Contains(p.Email, f.Search) {
			all = append(all, cp(p))
		}
	}
	slices.SortFunc(all, func(a, b *models.Profile) int { return strings.Compare(a.Email, b.Email) })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (m memUsers) SetRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Role = role
	return nil
}

func (m memUsers) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.IsActive = active
	return nil
}

func (m memUsers) Counts(context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, p := range m.profiles {
		if p.IsActive {
			active++
		}
	}
	return len(m.profiles), active, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// --- refresh tokens ---

type memRefresh struct{ *memDB }

func (m memRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("refreshtokens.Create"); err != nil {
		return err
	}
	m.refresh[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: testNow.Add(validity)}
	return nil
}

func (m memRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.refresh[token]; ok {
		return cp(t), nil
	}
	return nil, common.ErrorNotFound
}

func (m memRefresh) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refresh, token)
	return nil
}

func (m memRefresh) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.refresh {
		if t.Expires.Before(before) {
			delete(m.refresh, k)
			n++
		}
	}
	return n, nil
}

func (m memRefresh) DeleteForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.refresh {
		if t.UserID == userID {
			delete(m.refresh, k)
		}
	}
	return nil
}

// --- plans ---

type memPlans struct{ *memDB }

func (m memPlans) List(context.Context) ([]*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Plan
	for _, p := range m.plans {
		out = append(out, cp(p))
	}
	slices.SortFunc(out, func(a, b *models.Plan) int { return cmp.Compare(a.PriceCents, b.PriceCents) })
	return out, nil
}

func (m memPlans) GetByID(_ context.Context, id string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok {
		return cp(p), nil
	}
	return nil, common.ErrorNotFound
}

// --- subscriptions ---

type memSubs struct{ *memDB }

func (m memSubs) Create(_ context.Context, s *models.Subscription) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("subscriptions.Create"); err != nil {
		return nil, err
	}
	c := cp(s)
	c.ID = m.nextID("sub")
	c.CreatedAt = testNow
	m.subs[c.ID] = c
	return cp(c), nil
}

func (m memSubs) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		return cp(s), nil
	}
	return nil, common.ErrorNotFound
}

func (m memSubs) GetActive(_ context.Context, userID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == models.SubscriptionActive && s.ExpiresAt.After(testNow) {
			if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
				best = s
			}
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return cp(best), nil
}

func (m memSubs) ExpireActive(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == models.SubscriptionActive {
			s.Status = models.SubscriptionExpired
		}
	}
	return nil
}

func (m memSubs) SetStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Status = status
	return nil
}

func (m memSubs) SetExpiry(_ context.Context, id string, expiresAt time.Time, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.ExpiresAt, s.Status = expiresAt, status
	return nil
}

func (m memSubs) ConsumeAPICall(_ context.Context, id string, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok || (limit > 0 && s.APICallsUsed >= limit) {
		return 0, common.ErrorLimitReached
	}
	s.APICallsUsed++
	return s.APICallsUsed, nil
}

func (m memSubs) CountActiveByPlan(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, s := range m.subs {
		if s.Status == models.SubscriptionActive && s.ExpiresAt.After(testNow) {
			out[s.PlanID]++
		}
	}
	return out, nil
}

// --- credential keys ---

type memKeys struct{ *memDB }

func (m memKeys) Create(_ context.Context, k *models.CredentialKey) (*models.CredentialKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("credentialkeys.Create"); err != nil {
		return nil, err
	}
	c := cp(k)
	c.ID = m.nextID("key")
	c.CreatedAt = testNow
	m.keys[c.ID] = c
	return cp(c), nil
}

func (m memKeys) GetByID(_ context.Context, id string) (*models.CredentialKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[id]; ok {
		return cp(k), nil
	}
	return nil, common.ErrorNotFound
}

func (m memKeys) GetByKey(_ context.Context, key string) (*models.CredentialKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.Key == key {
			return cp(k), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m memKeys) List(_ context.Context, f models.CredentialKeyFilter) ([]*models.CredentialKey, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.CredentialKey
	for _, k := range m.keys {
		if f.Status == "" || k.Status == f.Status {
			all = append(all, cp(k))
		}
	}
	slices.SortFunc(all, func(a, b *models.CredentialKey) int { return strings.Compare(a.ID, b.ID) })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (m memKeys) MarkRedeemed(_ context.Context, id, userID, subscriptionID string, redeemedAt, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	switch {
	case !ok:
		return common.ErrorNotFound
	case k.Status == models.KeyRevoked:
		return common.ErrTokenRevoked
	case k.Status != models.KeyIssued:
		return common.ErrTokenAlreadyRedeemed
	}
	k.Status = models.KeyRedeemed
	k.UserID, k.SubscriptionID = &userID, &subscriptionID
	k.RedeemedAt, k.ExpiresAt = &redeemedAt, &expiresAt
	return nil
}

func (m memKeys) Revoke(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.Status == models.KeyRevoked {
		return common.ErrTokenRevoked
	}
	k.Status = models.KeyRevoked
	k.RevokedAt = &at
	return nil
}

func (m memKeys) SetTerms(_ context.Context, id string, durationDays int, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return common.ErrorNotFound
	}
	k.DurationDays, k.ExpiresAt = durationDays, expiresAt
	return nil
}

func (m memKeys) CountByStatus(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{models.KeyIssued: 0, models.KeyRedeemed: 0, models.KeyRevoked: 0}
	for _, k := range m.keys {
		out[k.Status]++
	}
	return out, nil
}

// --- payments ---

type memPayments struct{ *memDB }

func (m memPayments) Create(_ context.Context, p *models.PaymentRecord) (*models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cp(p)
	c.ID = m.nextID("pay")
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	m.payments[c.ID] = c
	return cp(c), nil
}

func (m memPayments) GetByID(_ context.Context, id string) (*models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		return cp(p), nil
	}
	return nil, common.ErrorNotFound
}

func (m memPayments) GetForUpdate(ctx context.Context, id string) (*models.PaymentRecord, error) {
	return m.GetByID(ctx, id)
}

func (m memPayments) MarkPaid(_ context.Context, id, providerRef, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("payments.MarkPaid"); err != nil {
		return err
	}
	p, ok := m.payments[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Status, p.CredentialKeyID = models.PaymentPaid, &keyID
	if providerRef != "" {
		p.ProviderRef = &providerRef
	}
	return nil
}

func (m memPayments) MarkFailed(_ context.Context, id, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Status = models.PaymentFailed
	if providerRef != "" {
		p.ProviderRef = &providerRef
	}
	return nil
}

func (m memPayments) RevenueCents(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.payments {
		if p.Status == models.PaymentPaid {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

// --- stores ---

type memStores struct{ *memDB }

func (m memStores) Create(_ context.Context, s *models.Store) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("stores.Create"); err != nil {
		return nil, err
	}
	c := cp(s)
	c.ID = m.nextID("store")
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	m.stores[c.ID] = c
	return cp(c), nil
}

func (m memStores) GetByID(_ context.Context, id string) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[id]; ok {
		return cp(s), nil
	}
	return nil, common.ErrorNotFound
}

func (m memStores) ListForUser(_ context.Context, userID string) ([]*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Store
	for k, role := range m.roles {
		if k[1] != userID {
			continue
		}
		if s, ok := m.stores[k[0]]; ok {
			c := cp(s)
			c.MyRole = role
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Store) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m memStores) Update(_ context.Context, s *models.Store) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.stores[s.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Name, cur.Address, cur.Currency, cur.Timezone = s.Name, s.Address, s.Currency, s.Timezone
	return cp(cur), nil
}

func (m memStores) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.stores, id)
	for k := range m.roles {
		if k[0] == id {
			delete(m.roles, k)
		}
	}
	return nil
}

func (m memStores) CountOwned(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownedStores(ownerID), nil
}

func (m memStores) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores), nil
}

// --- store roles ---

type memRoles struct{ *memDB }

func (m memRoles) Grant(_ context.Context, storeID, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("storeroles.Grant"); err != nil {
		return err
	}
	m.roles[[2]string{storeID, userID}] = role
	return nil
}

func (m memRoles) Revoke(_ context.Context, storeID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]string{storeID, userID}
	if r, ok := m.roles[k]; !ok || r == models.StoreRoleOwner {
		return common.ErrorNotFound
	}
	delete(m.roles, k)
	return nil
}

func (m memRoles) GetRole(_ context.Context, storeID, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[[2]string{storeID, userID}]; ok {
		return r, nil
	}
	return "", common.ErrorNotFound
}

func (m memRoles) List(_ context.Context, storeID string) ([]*models.StoreRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StoreRole
	for k, r := range m.roles {
		if k[0] == storeID {
			out = append(out, &models.StoreRole{StoreID: k[0], UserID: k[1], Role: r})
		}
	}
	slices.SortFunc(out, func(a, b *models.StoreRole) int { return strings.Compare(a.UserID, b.UserID) })
	return out, nil
}

// --- dashboard users ---

type memStaff struct{ *memDB }

func (m memStaff) List(_ context.Context, storeID string) ([]*models.DashboardUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.DashboardUser
	for _, u := range m.staff {
		if u.StoreID == storeID {
			out = append(out, cp(u))
		}
	}
	slices.SortFunc(out, func(a, b *models.DashboardUser) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m memStaff) Create(_ context.Context, u *models.DashboardUser) (*models.DashboardUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cp(u)
	c.ID = m.nextID("staff")
	c.CreatedAt = testNow
	m.staff[c.ID] = c
	return cp(c), nil
}

func (m memStaff) Update(_ context.Context, u *models.DashboardUser) (*models.DashboardUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.staff[u.ID]
	if !ok || cur.StoreID != u.StoreID {
		return nil, common.ErrorNotFound
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	return cp(cur), nil
}

func (m memStaff) SetActive(_ context.Context, storeID, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.staff[id]
	if !ok || cur.StoreID != storeID {
		return common.ErrorNotFound
	}
	cur.IsActive = active
	return nil
}

// --- transactions ---

type memTxs struct{ *memDB }

func (m memTxs) match(f models.TransactionFilter) []*models.Transaction {
	var out []*models.Transaction
	for _, t := range m.txs {
		switch {
		case f.StoreID != "" && t.StoreID != f.StoreID,
			!f.From.IsZero() && t.OccurredAt.Before(f.From),
			!f.To.IsZero() && !t.OccurredAt.Before(f.To),
			f.Type != "" && t.Type != f.Type,
			f.Category != "" && t.Category != f.Category:
			continue
		}
		out = append(out, cp(t))
	}
	slices.SortFunc(out, func(a, b *models.Transaction) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (m memTxs) List(_ context.Context, f models.TransactionFilter) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.match(f), f.Limit, f.Offset), nil
}

func (m memTxs) Count(_ context.Context, f models.TransactionFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.match(f)), nil
}

func (m memTxs) GetByID(_ context.Context, storeID, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.txs[id]; ok && t.StoreID == storeID {
		return cp(t), nil
	}
	return nil, common.ErrorNotFound
}

func (m memTxs) Create(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cp(t)
	c.ID = m.nextID("tx")
	c.CreatedAt = testNow
	m.txs[c.ID] = c
	return cp(c), nil
}

func (m memTxs) Update(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.txs[t.ID]
	if !ok || cur.StoreID != t.StoreID {
		return nil, common.ErrorNotFound
	}
	c := cp(t)
	c.CreatedBy, c.CreatedAt = cur.CreatedBy, cur.CreatedAt
	m.txs[t.ID] = c
	return cp(c), nil
}

func (m memTxs) Delete(_ context.Context, storeID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.txs[id]; !ok || t.StoreID != storeID {
		return common.ErrorNotFound
	}
	delete(m.txs, id)
	return nil
}

// --- categories ---

type memCats struct{ *memDB }

func (m memCats) List(_ context.Context, storeID, txType string) ([]*models.CustomCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CustomCategory
	for _, c := range m.cats {
		if c.StoreID == storeID && (txType == "" || c.Type == txType) {
			out = append(out, cp(c))
		}
	}
	return out, nil
}

func (m memCats) Create(_ context.Context, c *models.CustomCategory) (*models.CustomCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.cats {
		if x.StoreID == c.StoreID && x.Type == c.Type && x.Name == c.Name {
			return nil, common.ErrorAlreadyExists
		}
	}
	n := cp(c)
	n.ID = m.nextID("cat")
	m.cats[n.ID] = n
	return cp(n), nil
}

func (m memCats) Delete(_ context.Context, storeID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.cats[id]; !ok || c.StoreID != storeID {
		return common.ErrorNotFound
	}
	delete(m.cats, id)
	return nil
}

func (m memCats) Exists(_ context.Context, storeID, txType, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cats {
		if c.StoreID == storeID && c.Type == txType && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// --- photo jobs ---

type memJobs struct{ *memDB }

func (m memJobs) Create(_ context.Context, j *models.PhotoJob) (*models.PhotoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cp(j)
	c.ID = m.nextID("job")
	c.CreatedAt = testNow
	m.jobs[c.ID] = c
	return cp(c), nil
}

func (m memJobs) GetByID(_ context.Context, id string) (*models.PhotoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return cp(j), nil
	}
	return nil, common.ErrorNotFound
}

func (m memJobs) ListForUser(_ context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PhotoJob
	for _, j := range m.jobs {
		if j.UserID == userID {
			out = append(out, cp(j))
		}
	}
	slices.SortFunc(out, func(a, b *models.PhotoJob) int { return strings.Compare(a.ID, b.ID) })
	return page(out, limit, offset), nil
}

func (m memJobs) SetStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return common.ErrorNotFound
	}
	j.Status = status
	return nil
}

func (m memJobs) Complete(_ context.Context, id, resultKey string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return common.ErrorNotFound
	}
	j.Status, j.ResultKey, j.CompletedAt = models.PhotoCompleted, resultKey, &at
	return nil
}

func (m memJobs) Fail(_ context.Context, id, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return common.ErrorNotFound
	}
	j.Status, j.Error, j.CompletedAt = models.PhotoFailed, reason, &at
	return nil
}

func (m memJobs) CountForUserSince(_ context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.jobs {
		if j.UserID == userID && !j.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- labels ---

type memLabels struct{ *memDB }

func (m memLabels) Create(_ context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cp(l)
	c.ID = m.nextID("label")
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	m.labels[c.ID] = c
	return cp(c), nil
}

func (m memLabels) GetByID(_ context.Context, userID, id string) (*models.GeneratedLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.labels[id]; ok && l.UserID == userID {
		return cp(l), nil
	}
	return nil, common.ErrorNotFound
}

func (m memLabels) List(_ context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.GeneratedLabel
	for _, l := range m.labels {
		if l.UserID != userID {
			continue
		}
		if storeID != nil && (l.StoreID == nil || *l.StoreID != *storeID) {
			continue
		}
		out = append(out, cp(l))
	}
	return out, nil
}

func (m memLabels) Update(_ context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.labels[l.ID]
	if !ok || cur.UserID != l.UserID {
		return nil, common.ErrorNotFound
	}
	cur.StoreID, cur.Name, cur.Template, cur.Data = l.StoreID, l.Name, l.Template, l.Data
	return cp(cur), nil
}

func (m memLabels) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.labels[id]; !ok || l.UserID != userID {
		return common.ErrorNotFound
	}
	delete(m.labels, id)
	return nil
}

// --- chat logs ---

type memChats struct{ *memDB }

func (m memChats) Create(_ context.Context, c *models.ChatLog) (*models.ChatLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("chatlogs.Create"); err != nil {
		return nil, err
	}
	n := cp(c)
	n.ID = m.nextID("chat")
	n.CreatedAt = testNow.Add(time.Duration(m.seq) * time.Second)
	m.chats = append(m.chats, n)
	return cp(n), nil
}

func (m memChats) History(_ context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ChatLog
	for _, c := range m.chats {
		if c.UserID != userID {
			continue
		}
		if storeID != nil && (c.StoreID == nil || *c.StoreID != *storeID) {
			continue
		}
		out = append(out, cp(c))
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// --- admin logs ---

type memAdminLogs struct{ *memDB }

func (m memAdminLogs) Create(_ context.Context, l *models.AdminLog) (*models.AdminLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("adminlogs.Create"); err != nil {
		return nil, err
	}
	c := cp(l)
	c.ID = m.nextID("log")
	c.CreatedAt = testNow
	m.adminLogs = append(m.adminLogs, c)
	return cp(c), nil
}

func (m memAdminLogs) List(_ context.Context, limit, offset int) ([]*models.AdminLog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := slices.Clone(m.adminLogs)
	slices.Reverse(all)
	return page(all, limit, offset), len(all), nil
}
