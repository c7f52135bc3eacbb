package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"go.uber.org/zap"
)

// AccountService manages the balance-bearing accounts: personal wallets and
// shared fams wallets. It never touches balances; money moves only through
// the ledger.
type AccountService struct {
	accounts wallet.AccountRepository
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts wallet.AccountRepository, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, logger: logger}
}

// RegisterUser opens a personal wallet for a new member
func (s *AccountService) RegisterUser(ctx context.Context, email, displayName string) (*wallet.UserAccount, error) {
	account, err := wallet.NewUserAccount(email, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.CreateUser(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}
	s.logger.Info("User account created",
		zap.String("user_id", account.ID.String()),
		zap.String("email", account.Email))
	return account, nil
}

// GetUser loads one personal wallet
func (s *AccountService) GetUser(ctx context.Context, id uuid.UUID) (*wallet.UserAccount, error) {
	return s.accounts.FindUserByID(ctx, id)
}

// CreateFams opens a shared wallet with the founder as its first admin
func (s *AccountService) CreateFams(ctx context.Context, name string, founderID uuid.UUID) (*wallet.Fams, error) {
	if _, err := s.accounts.FindUserByID(ctx, founderID); err != nil {
		return nil, err
	}
	fams, err := wallet.NewFams(name, founderID)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.CreateFams(ctx, fams); err != nil {
		return nil, fmt.Errorf("failed to create fams: %w", err)
	}
	s.logger.Info("Fams created",
		zap.String("fams_id", fams.ID.String()),
		zap.String("founder_id", founderID.String()))
	return fams, nil
}

// GetFams loads one shared wallet with its members
func (s *AccountService) GetFams(ctx context.Context, id uuid.UUID) (*wallet.Fams, error) {
	return s.accounts.FindFamsByID(ctx, id)
}

// AddFamsMember enrolls a user into a fams. Only an admin may do this.
func (s *AccountService) AddFamsMember(ctx context.Context, famsID, actorID, userID uuid.UUID, isAdmin bool) (*wallet.Fams, error) {
	return s.mutateMembers(ctx, famsID, actorID, func(f *wallet.Fams) error {
		if _, err := s.accounts.FindUserByID(ctx, userID); err != nil {
			return err
		}
		return f.AddMember(userID, isAdmin)
	})
}

// RemoveFamsMember removes a member. Admins can remove anyone but the last
// admin; a member may always remove themselves.
func (s *AccountService) RemoveFamsMember(ctx context.Context, famsID, actorID, userID uuid.UUID) (*wallet.Fams, error) {
	fams, err := s.accounts.FindFamsByID(ctx, famsID)
	if err != nil {
		return nil, err
	}
	if _, admin := fams.MemberOf(actorID); !admin && actorID != userID {
		return nil, shared.ErrForbidden
	}
	if err := fams.RemoveMember(userID); err != nil {
		return nil, err
	}
	if err := s.accounts.SaveFamsMembers(ctx, fams); err != nil {
		return nil, fmt.Errorf("failed to save fams members: %w", err)
	}
	return fams, nil
}

// PromoteFamsAdmin grants admin rights to an existing member
func (s *AccountService) PromoteFamsAdmin(ctx context.Context, famsID, actorID, userID uuid.UUID) (*wallet.Fams, error) {
	return s.mutateMembers(ctx, famsID, actorID, func(f *wallet.Fams) error {
		return f.PromoteAdmin(userID)
	})
}

func (s *AccountService) mutateMembers(ctx context.Context, famsID, actorID uuid.UUID, apply func(*wallet.Fams) error) (*wallet.Fams, error) {
	fams, err := s.accounts.FindFamsByID(ctx, famsID)
	if err != nil {
		return nil, err
	}
	if _, admin := fams.MemberOf(actorID); !admin {
		return nil, shared.ErrForbidden
	}
	if err := apply(fams); err != nil {
		return nil, err
	}
	if err := s.accounts.SaveFamsMembers(ctx, fams); err != nil {
		return nil, fmt.Errorf("failed to save fams members: %w", err)
	}
	return fams, nil
}
