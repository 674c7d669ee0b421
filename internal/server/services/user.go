package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/auth"
	"github.com/dmitrijs2005/lirra/internal/server/config"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Me is the authenticated user's view of their account. Subscription is nil
// when no subscription is active.
type Me struct {
	Profile      *models.Profile             `json:"profile"`
	Subscription *models.SubscriptionSummary `json:"subscription"`
}

// UserService provides authentication-related operations:
// - Register: create dashboard accounts
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration

	// dummyHash is compared against when the email is unknown so that
	// both paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	dummy, _ := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), bcryptCost)
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		dummyHash:                    dummy,
	}
}

// Register creates a profile with role "user".
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	email = common.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.Validationf("a valid email is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, common.Validationf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > 72 {
		return nil, common.Validationf("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p, err := s.repomanager.Users(s.db).Create(ctx, &models.Profile{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return p, nil
}

// Login verifies the password and, on success, returns a new TokenPair.
// Unknown emails, wrong passwords and deactivated profiles are all
// reported as ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(timeNow()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*TokenPair, error) {
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return nil, err
		}
		if !user.IsActive {
			return nil, common.ErrorUnauthorized
		}
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return s.generateTokenPair(ctx, user, tx)
	})
}

// PurgeExpiredSessions deletes refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, timeNow())
}

// Logout forgets the given refresh token.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// Me returns the profile together with the active subscription summary.
func (s *UserService) Me(ctx context.Context, userID string) (*Me, error) {
	p, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum, err := loadSummary(ctx, s.repomanager, s.db, userID)
	if err != nil && !errors.Is(err, common.ErrNoActiveSubscription) {
		return nil, err
	}
	return &Me{Profile: p, Subscription: sum}, nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(ctx context.Context, user *models.Profile, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
