package httpapi

import (
	"context"
	"io"

	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/stretchr/testify/mock"
)

// ret returns the first mocked value as T, or the zero T when it is nil.
func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) Register(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	args := m.Called(ctx, email, password, fullName)
	return ret[*models.Profile](args, 0), args.Error(1)
}

func (m *MockAccounts) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return ret[*services.TokenPair](args, 0), args.Error(1)
}

func (m *MockAccounts) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return ret[*services.TokenPair](args, 0), args.Error(1)
}

func (m *MockAccounts) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAccounts) Me(ctx context.Context, userID string) (*services.Me, error) {
	args := m.Called(ctx, userID)
	return ret[*services.Me](args, 0), args.Error(1)
}

type MockSubscriptions struct{ mock.Mock }

func (m *MockSubscriptions) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	return ret[[]*models.Plan](args, 0), args.Error(1)
}

func (m *MockSubscriptions) Current(ctx context.Context, userID string) (*models.SubscriptionSummary, error) {
	args := m.Called(ctx, userID)
	return ret[*models.SubscriptionSummary](args, 0), args.Error(1)
}

type MockKeys struct{ mock.Mock }

func (m *MockKeys) Redeem(ctx context.Context, userID, key string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, key)
	return ret[*models.Subscription](args, 0), args.Error(1)
}

type MockPayments struct{ mock.Mock }

func (m *MockPayments) CreateCheckout(ctx context.Context, userID, planID string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, userID, planID)
	return ret[*models.PaymentRecord](args, 0), args.Error(1)
}

func (m *MockPayments) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, payload, signature)
	return ret[*models.PaymentRecord](args, 0), args.Error(1)
}

func (m *MockPayments) Status(ctx context.Context, userID, paymentID string) (*services.PaymentStatus, error) {
	args := m.Called(ctx, userID, paymentID)
	return ret[*services.PaymentStatus](args, 0), args.Error(1)
}

type MockStores struct{ mock.Mock }

func (m *MockStores) Create(ctx context.Context, ownerID string, in services.StoreInput) (*models.Store, error) {
	args := m.Called(ctx, ownerID, in)
	return ret[*models.Store](args, 0), args.Error(1)
}

func (m *MockStores) List(ctx context.Context, userID string) ([]*models.Store, error) {
	args := m.Called(ctx, userID)
	return ret[[]*models.Store](args, 0), args.Error(1)
}

func (m *MockStores) Get(ctx context.Context, userID, storeID string) (*models.Store, error) {
	args := m.Called(ctx, userID, storeID)
	return ret[*models.Store](args, 0), args.Error(1)
}

func (m *MockStores) Update(ctx context.Context, userID, storeID string, in services.StoreInput) (*models.Store, error) {
	args := m.Called(ctx, userID, storeID, in)
	return ret[*models.Store](args, 0), args.Error(1)
}

func (m *MockStores) Delete(ctx context.Context, userID, storeID string) error {
	return m.Called(ctx, userID, storeID).Error(0)
}

func (m *MockStores) ListRoles(ctx context.Context, userID, storeID string) ([]*models.StoreRole, error) {
	args := m.Called(ctx, userID, storeID)
	return ret[[]*models.StoreRole](args, 0), args.Error(1)
}

func (m *MockStores) GrantRole(ctx context.Context, userID, storeID, targetID, role string) error {
	return m.Called(ctx, userID, storeID, targetID, role).Error(0)
}

func (m *MockStores) RevokeRole(ctx context.Context, userID, storeID, targetID string) error {
	return m.Called(ctx, userID, storeID, targetID).Error(0)
}

func (m *MockStores) ListStaff(ctx context.Context, userID, storeID string) ([]*models.DashboardUser, error) {
	args := m.Called(ctx, userID, storeID)
	return ret[[]*models.DashboardUser](args, 0), args.Error(1)
}

func (m *MockStores) CreateStaff(ctx context.Context, userID, storeID string, in services.StaffInput) (*models.DashboardUser, error) {
	args := m.Called(ctx, userID, storeID, in)
	return ret[*models.DashboardUser](args, 0), args.Error(1)
}

func (m *MockStores) UpdateStaff(ctx context.Context, userID, storeID, staffID string, in services.StaffInput) (*models.DashboardUser, error) {
	args := m.Called(ctx, userID, storeID, staffID, in)
	return ret[*models.DashboardUser](args, 0), args.Error(1)
}

func (m *MockStores) SetStaffActive(ctx context.Context, userID, storeID, staffID string, active bool) error {
	return m.Called(ctx, userID, storeID, staffID, active).Error(0)
}

type MockBookkeeper struct{ mock.Mock }

func (m *MockBookkeeper) List(ctx context.Context, userID string, f models.TransactionFilter) (*services.TransactionPage, error) {
	args := m.Called(ctx, userID, f)
	return ret[*services.TransactionPage](args, 0), args.Error(1)
}

func (m *MockBookkeeper) Get(ctx context.Context, userID, storeID, id string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, storeID, id)
	return ret[*models.Transaction](args, 0), args.Error(1)
}

func (m *MockBookkeeper) Create(ctx context.Context, userID, storeID string, in services.TransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, userID, storeID, in)
	return ret[*models.Transaction](args, 0), args.Error(1)
}

func (m *MockBookkeeper) Update(ctx context.Context, userID, storeID, id string, in services.TransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, userID, storeID, id, in)
	return ret[*models.Transaction](args, 0), args.Error(1)
}

func (m *MockBookkeeper) Delete(ctx context.Context, userID, storeID, id string) error {
	return m.Called(ctx, userID, storeID, id).Error(0)
}

// ExportCSV writes the mocked string to w before returning the mocked error.
func (m *MockBookkeeper) ExportCSV(ctx context.Context, userID string, f models.TransactionFilter, w io.Writer) error {
	args := m.Called(ctx, userID, f)
	if s := args.String(0); s != "" {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

func (m *MockBookkeeper) Categories(ctx context.Context, userID, storeID, txType string) ([]services.Category, error) {
	args := m.Called(ctx, userID, storeID, txType)
	return ret[[]services.Category](args, 0), args.Error(1)
}

func (m *MockBookkeeper) CreateCategory(ctx context.Context, userID, storeID, name, txType string) (*models.CustomCategory, error) {
	args := m.Called(ctx, userID, storeID, name, txType)
	return ret[*models.CustomCategory](args, 0), args.Error(1)
}

func (m *MockBookkeeper) DeleteCategory(ctx context.Context, userID, storeID, id string) error {
	return m.Called(ctx, userID, storeID, id).Error(0)
}

type MockReporter struct{ mock.Mock }

func (m *MockReporter) Report(ctx context.Context, userID, storeID, from, to string) (*models.Report, error) {
	args := m.Called(ctx, userID, storeID, from, to)
	return ret[*models.Report](args, 0), args.Error(1)
}

type MockAdmin struct{ mock.Mock }

func (m *MockAdmin) Execute(ctx context.Context, adminID string, body []byte) (any, error) {
	args := m.Called(ctx, adminID, string(body))
	return args.Get(0), args.Error(1)
}

type MockPhotos struct{ mock.Mock }

func (m *MockPhotos) Submit(ctx context.Context, userID string, storeID *string, image []byte, declaredType string) (*services.PhotoView, error) {
	args := m.Called(ctx, userID, storeID, image, declaredType)
	return ret[*services.PhotoView](args, 0), args.Error(1)
}

func (m *MockPhotos) Get(ctx context.Context, userID, id string) (*services.PhotoView, error) {
	args := m.Called(ctx, userID, id)
	return ret[*services.PhotoView](args, 0), args.Error(1)
}

func (m *MockPhotos) List(ctx context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error) {
	args := m.Called(ctx, userID, limit, offset)
	return ret[[]*models.PhotoJob](args, 0), args.Error(1)
}

type MockLabels struct{ mock.Mock }

func (m *MockLabels) Create(ctx context.Context, userID string, in services.LabelInput) (*models.GeneratedLabel, error) {
	args := m.Called(ctx, userID, in)
	return ret[*models.GeneratedLabel](args, 0), args.Error(1)
}

func (m *MockLabels) Get(ctx context.Context, userID, id string) (*models.GeneratedLabel, error) {
	args := m.Called(ctx, userID, id)
	return ret[*models.GeneratedLabel](args, 0), args.Error(1)
}

func (m *MockLabels) List(ctx context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error) {
	args := m.Called(ctx, userID, storeID)
	return ret[[]*models.GeneratedLabel](args, 0), args.Error(1)
}

func (m *MockLabels) Update(ctx context.Context, userID, id string, in services.LabelInput) (*models.GeneratedLabel, error) {
	args := m.Called(ctx, userID, id, in)
	return ret[*models.GeneratedLabel](args, 0), args.Error(1)
}

func (m *MockLabels) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockChat struct{ mock.Mock }

func (m *MockChat) Append(ctx context.Context, userID string, storeID *string, entries []services.ChatEntry) ([]*models.ChatLog, error) {
	args := m.Called(ctx, userID, storeID, entries)
	return ret[[]*models.ChatLog](args, 0), args.Error(1)
}

func (m *MockChat) History(ctx context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error) {
	args := m.Called(ctx, userID, storeID, limit)
	return ret[[]*models.ChatLog](args, 0), args.Error(1)
}
