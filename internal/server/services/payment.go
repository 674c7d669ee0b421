package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/config"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

const paymentProvider = "manual"

// WebhookEvent is the payment provider's notification body.
type WebhookEvent struct {
	PaymentID   string `json:"payment_id"`
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"`
}

// PaymentStatus is what the payment-success page polls. CredentialKey is
// set once the payment is paid.
type PaymentStatus struct {
	Payment       *models.PaymentRecord `json:"payment"`
	CredentialKey string                `json:"credential_key,omitempty"`
}

type PaymentService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	webhookSecret []byte
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *PaymentService {
	return &PaymentService{db: db, repomanager: m, webhookSecret: []byte(cfg.PaymentWebhookSecret)}
}

// CreateCheckout records a pending payment for the plan's current price.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID, planID string) (*models.PaymentRecord, error) {
	plan, err := s.repomanager.Plans(s.db).GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Validationf("unknown plan %q", planID)
		}
		return nil, err
	}

	return s.repomanager.Payments(s.db).Create(ctx, &models.PaymentRecord{
		UserID:      userID,
		PlanID:      plan.ID,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Provider:    paymentProvider,
		Status:      models.PaymentPending,
	})
}

// VerifySignature checks the hex HMAC-SHA256 of payload.
func (s *PaymentService) VerifySignature(payload []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// HandleWebhook applies a signed provider notification. A paid event issues
// one credential key and links it to the payment; replays of an event for
// an already paid payment change nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentRecord, error) {
	if !s.VerifySignature(payload, signature) {
		return nil, common.ErrInvalidSignature
	}

	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, common.Validationf("malformed webhook payload")
	}
	if ev.PaymentID == "" {
		return nil, common.Validationf("payment_id is required")
	}
	if ev.Status != models.PaymentPaid && ev.Status != models.PaymentFailed {
		return nil, common.Validationf("unsupported status %q", ev.Status)
	}

	var out *models.PaymentRecord
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		payments := s.repomanager.Payments(tx)

		p, err := payments.GetForUpdate(ctx, ev.PaymentID)
		if err != nil {
			return err
		}
		out = p
		if p.Status == models.PaymentPaid {
			return nil
		}

		if ev.Status == models.PaymentFailed {
			if err := payments.MarkFailed(ctx, p.ID, ev.ProviderRef); err != nil {
				return err
			}
			p.Status = models.PaymentFailed
			return nil
		}

		keys, err := issueKeys(ctx, s.repomanager, tx, p.PlanID, 0, 1, &p.ID)
		if err != nil {
			return err
		}
		if err := payments.MarkPaid(ctx, p.ID, ev.ProviderRef, keys[0].ID); err != nil {
			return err
		}
		p.Status = models.PaymentPaid
		p.CredentialKeyID = &keys[0].ID
		if ev.ProviderRef != "" {
			p.ProviderRef = &ev.ProviderRef
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Status returns the caller's payment; other users' payments are not found.
func (s *PaymentService) Status(ctx context.Context, userID, paymentID string) (*PaymentStatus, error) {
	p, err := s.repomanager.Payments(s.db).GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, common.ErrorNotFound
	}

	st := &PaymentStatus{Payment: p}
	if p.Status == models.PaymentPaid && p.CredentialKeyID != nil {
		k, err := s.repomanager.CredentialKeys(s.db).GetByID(ctx, *p.CredentialKeyID)
		if err != nil {
			return nil, err
		}
		st.CredentialKey = k.Key
	}
	return st, nil
}
