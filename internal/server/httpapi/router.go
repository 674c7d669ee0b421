// Package httpapi exposes the Lirra services as a JSON API over gin.
//
// Successful responses are wrapped as {"data": ...}; failures as
// {"error": "..."} with the status chosen by statusFor.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// BasePath prefixes every versioned route.
const BasePath = "/api/v1"

type Accounts interface {
	Register(ctx context.Context, email, password, fullName string) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*services.Me, error)
}

type Subscriptions interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	Current(ctx context.Context, userID string) (*models.SubscriptionSummary, error)
}

type KeyRedeemer interface {
	Redeem(ctx context.Context, userID, key string) (*models.Subscription, error)
}

type Payments interface {
	CreateCheckout(ctx context.Context, userID, planID string) (*models.PaymentRecord, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentRecord, error)
	Status(ctx context.Context, userID, paymentID string) (*services.PaymentStatus, error)
}

type Stores interface {
	Create(ctx context.Context, ownerID string, in services.StoreInput) (*models.Store, error)
	List(ctx context.Context, userID string) ([]*models.Store, error)
	Get(ctx context.Context, userID, storeID string) (*models.Store, error)
	Update(ctx context.Context, userID, storeID string, in services.StoreInput) (*models.Store, error)
	Delete(ctx context.Context, userID, storeID string) error
	ListRoles(ctx context.Context, userID, storeID string) ([]*models.StoreRole, error)
	GrantRole(ctx context.Context, userID, storeID, targetID, role string) error
	RevokeRole(ctx context.Context, userID, storeID, targetID string) error
	ListStaff(ctx context.Context, userID, storeID string) ([]*models.DashboardUser, error)
	CreateStaff(ctx context.Context, userID, storeID string, in services.StaffInput) (*models.DashboardUser, error)
	UpdateStaff(ctx context.Context, userID, storeID, staffID string, in services.StaffInput) (*models.DashboardUser, error)
	SetStaffActive(ctx context.Context, userID, storeID, staffID string, active bool) error
}

type Bookkeeper interface {
	List(ctx context.Context, userID string, f models.TransactionFilter) (*services.TransactionPage, error)
	Get(ctx context.Context, userID, storeID, id string) (*models.Transaction, error)
	Create(ctx context.Context, userID, storeID string, in services.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, userID, storeID, id string, in services.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, userID, storeID, id string) error
	ExportCSV(ctx context.Context, userID string, f models.TransactionFilter, w io.Writer) error
	Categories(ctx context.Context, userID, storeID, txType string) ([]services.Category, error)
	CreateCategory(ctx context.Context, userID, storeID, name, txType string) (*models.CustomCategory, error)
	DeleteCategory(ctx context.Context, userID, storeID, id string) error
}

type Reporter interface {
	Report(ctx context.Context, userID, storeID, from, to string) (*models.Report, error)
}

type Administrator interface {
	Execute(ctx context.Context, adminID string, body []byte) (any, error)
}

type PhotoProcessor interface {
	Submit(ctx context.Context, userID string, storeID *string, image []byte, declaredType string) (*services.PhotoView, error)
	Get(ctx context.Context, userID, id string) (*services.PhotoView, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error)
}

type Labels interface {
	Create(ctx context.Context, userID string, in services.LabelInput) (*models.GeneratedLabel, error)
	Get(ctx context.Context, userID, id string) (*models.GeneratedLabel, error)
	List(ctx context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error)
	Update(ctx context.Context, userID, id string, in services.LabelInput) (*models.GeneratedLabel, error)
	Delete(ctx context.Context, userID, id string) error
}

type Chat interface {
	Append(ctx context.Context, userID string, storeID *string, entries []services.ChatEntry) ([]*models.ChatLog, error)
	History(ctx context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error)
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles everything the router dispatches to.
type Services struct {
	Accounts      Accounts
	Subscriptions Subscriptions
	Keys          KeyRedeemer
	Payments      Payments
	Stores        Stores
	Bookkeeping   Bookkeeper
	Analytics     Reporter
	Admin         Administrator
	Photos        PhotoProcessor
	Labels        Labels
	Chat          Chat
}

// Options configures the router.
type Options struct {
	SecretKey   []byte
	CORSOrigins []string
	DB          Pinger
	Logger      logging.Logger
}

// NewRouter builds the gin engine serving the whole API.
func NewRouter(opts Options, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/healthz", healthz(opts.DB))

	v1 := r.Group(BasePath)

	auth := &authHandler{accounts: svc.Accounts}
	v1.POST("/auth/register", auth.Register)
	v1.POST("/auth/login", auth.Login)
	v1.POST("/auth/refresh", auth.Refresh)
	v1.POST("/auth/logout", auth.Logout)

	billing := &billingHandler{subs: svc.Subscriptions, keys: svc.Keys, payments: svc.Payments}
	v1.GET("/plans", billing.ListPlans)
	v1.POST("/payments/webhook", billing.Webhook)

	authed := v1.Group("", authRequired(opts.SecretKey))
	authed.GET("/me", auth.Me)
	authed.GET("/subscription", billing.Current)
	authed.POST("/subscription/redeem", billing.Redeem)
	authed.POST("/payments/checkout", billing.Checkout)
	authed.GET("/payments/:id", billing.Status)

	stores := &storeHandler{stores: svc.Stores}
	authed.GET("/stores", stores.List)
	authed.POST("/stores", stores.Create)
	authed.GET("/stores/:storeID", stores.Get)
	authed.PUT("/stores/:storeID", stores.Update)
	authed.DELETE("/stores/:storeID", stores.Delete)
	authed.GET("/stores/:storeID/roles", stores.ListRoles)
	authed.PUT("/stores/:storeID/roles/:userID", stores.GrantRole)
	authed.DELETE("/stores/:storeID/roles/:userID", stores.RevokeRole)
	authed.GET("/stores/:storeID/staff", stores.ListStaff)
	authed.POST("/stores/:storeID/staff", stores.CreateStaff)
	authed.PUT("/stores/:storeID/staff/:staffID", stores.UpdateStaff)
	authed.PUT("/stores/:storeID/staff/:staffID/active", stores.SetStaffActive)

	books := &bookkeepingHandler{books: svc.Bookkeeping, reports: svc.Analytics}
	authed.GET("/stores/:storeID/transactions", books.List)
	authed.POST("/stores/:storeID/transactions", books.Create)
	authed.GET("/stores/:storeID/transactions/:id", books.Get)
	authed.PUT("/stores/:storeID/transactions/:id", books.Update)
	authed.DELETE("/stores/:storeID/transactions/:id", books.Delete)
	authed.GET("/stores/:storeID/export/transactions.csv", books.Export)
	authed.GET("/stores/:storeID/categories", books.Categories)
	authed.POST("/stores/:storeID/categories", books.CreateCategory)
	authed.DELETE("/stores/:storeID/categories/:id", books.DeleteCategory)
	authed.GET("/stores/:storeID/analytics", books.Report)

	features := &featureHandler{photos: svc.Photos, labels: svc.Labels, chat: svc.Chat}
	authed.POST("/photos", features.SubmitPhoto)
	authed.GET("/photos", features.ListPhotos)
	authed.GET("/photos/:id", features.GetPhoto)
	authed.GET("/labels", features.ListLabels)
	authed.POST("/labels", features.CreateLabel)
	authed.GET("/labels/:id", features.GetLabel)
	authed.PUT("/labels/:id", features.UpdateLabel)
	authed.DELETE("/labels/:id", features.DeleteLabel)
	authed.GET("/chat", features.History)
	authed.POST("/chat", features.Append)

	admin := &adminHandler{admin: svc.Admin}
	adm := authed.Group("/admin", adminOnly())
	adm.POST("/management", admin.Management)
	adm.GET("/stats", admin.Stats)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeaderName, common.WebhookSignatureHeaderName},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
