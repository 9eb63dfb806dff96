package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freshmart/internal/auth"
	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type accountService struct {
	accounts repository.AccountRepository
	tokens   *auth.TokenManager
	sessions auth.SessionStore
	logger   zerolog.Logger
	hashCost int
	now      func() time.Time
}

// NewAccountService creates a new account service. sessions may be nil.
func NewAccountService(
	accounts repository.AccountRepository,
	tokens *auth.TokenManager,
	sessions auth.SessionStore,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		accounts: accounts,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.With().Str("service", "account").Logger(),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Register(ctx context.Context, role model.Role, req *model.RegisterRequest) (*model.Account, error) {
	if !role.Valid() {
		return nil, model.ValidationError("unknown role %q", role)
	}
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, model.MissingFieldError("name")
	case strings.TrimSpace(req.Email) == "":
		return nil, model.MissingFieldError("email")
	case len(req.Password) < 8:
		return nil, model.ValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	account := &model.Account{
		ID:           uuid.New(),
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == model.RoleVendor {
		account.StoreName = req.StoreName
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("role", string(role)).
		Msg("account registered")
	return account, nil
}

// Login checks the credentials and issues a token and, when enabled, a server-side session.
func (s *accountService) Login(ctx context.Context, role model.Role, req *model.LoginRequest) (*model.LoginResponse, error) {
	if !role.Valid() {
		return nil, model.ValidationError("unknown role %q", role)
	}

	account, err := s.accounts.GetByEmail(ctx, role, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if account == nil {
		return nil, model.ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("account_id", account.ID.String()).Msg("password mismatch")
		return nil, model.ErrInvalidLogin
	}

	identity := model.Identity{ID: account.ID, Role: role}
	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	resp := &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}

	if s.sessions != nil {
		sessionID, err := s.sessions.Create(ctx, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to login: %w", err)
		}
		resp.SessionID = sessionID
	}

	s.logger.Info().Str("account_id", account.ID.String()).Str("role", string(role)).Msg("login succeeded")
	return resp, nil
}

// Logout ends a server-side session. It is a no-op without one.
func (s *accountService) Logout(ctx context.Context, sessionID string) error {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (s *accountService) Me(ctx context.Context, identity model.Identity) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, identity.Role, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}
