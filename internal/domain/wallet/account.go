package wallet

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
)

// WalletSource identifies which kind of balance a transaction applies to
type WalletSource string

const (
	// WalletSourcePersonal targets a user's personal wallet
	WalletSourcePersonal WalletSource = "PERSONAL"
	// WalletSourceFamily targets a shared fams wallet
	WalletSourceFamily WalletSource = "FAMILY"
)

// IsValid returns true if the wallet source is valid
func (s WalletSource) IsValid() bool {
	switch s {
	case WalletSourcePersonal, WalletSourceFamily:
		return true
	default:
		return false
	}
}

// String returns the string representation of WalletSource
func (s WalletSource) String() string {
	return string(s)
}

// AccountRef identifies one balance-bearing account, personal or fams.
type AccountRef struct {
	Source WalletSource
	ID     uuid.UUID
}

// PersonalAccount builds a reference to a user's personal wallet
func PersonalAccount(userID uuid.UUID) AccountRef {
	return AccountRef{Source: WalletSourcePersonal, ID: userID}
}

// FamsAccount builds a reference to a shared fams wallet
func FamsAccount(famsID uuid.UUID) AccountRef {
	return AccountRef{Source: WalletSourceFamily, ID: famsID}
}

// Validate checks the reference is usable
func (r AccountRef) Validate() error {
	if !r.Source.IsValid() {
		return shared.NewDomainError("INVALID_WALLET_SOURCE", fmt.Sprintf("Unknown wallet source %q", r.Source))
	}
	if r.ID == uuid.Nil {
		return shared.ErrAccountNotFound
	}
	return nil
}

// String renders the reference for logs
func (r AccountRef) String() string {
	return fmt.Sprintf("%s/%s", r.Source, r.ID)
}

// UserAccount is a member's personal wallet. BalanceCents is a materialized
// cache of the completed ledger entries targeting this user; it is never
// written directly, only through the ledger store's atomic increments.
type UserAccount struct {
	shared.BaseEntity
	Email        string
	DisplayName  string
	BalanceCents int64
}

// NewUserAccount creates a personal wallet with a zero balance
func NewUserAccount(email, displayName string) (*UserAccount, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	return &UserAccount{
		BaseEntity:  shared.NewBaseEntity(),
		Email:       email,
		DisplayName: displayName,
	}, nil
}

// Ref returns the ledger account reference for this wallet
func (u *UserAccount) Ref() AccountRef {
	return PersonalAccount(u.ID)
}

// FamsMember is one membership of a shared wallet
type FamsMember struct {
	FamsID  uuid.UUID
	UserID  uuid.UUID
	IsAdmin bool
}

// Fams is a shared wallet owned jointly by a group of users.
// Same balance rules as UserAccount: cached, ledger-driven only.
type Fams struct {
	shared.BaseEntity
	Name         string
	BalanceCents int64
	Members      []FamsMember
}

// NewFams creates a shared wallet with its founding admin
func NewFams(name string, founderID uuid.UUID) (*Fams, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FAMS_NAME", "Fams name cannot be empty")
	}
	if founderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Founder user ID is required")
	}
	f := &Fams{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}
	f.Members = append(f.Members, FamsMember{FamsID: f.ID, UserID: founderID, IsAdmin: true})
	return f, nil
}

// Ref returns the ledger account reference for this wallet
func (f *Fams) Ref() AccountRef {
	return FamsAccount(f.ID)
}

// MemberOf reports whether the user belongs to the fams, and as what role
func (f *Fams) MemberOf(userID uuid.UUID) (member bool, admin bool) {
	for _, m := range f.Members {
		if m.UserID == userID {
			return true, m.IsAdmin
		}
	}
	return false, false
}

// AddMember adds a user to the fams
func (f *Fams) AddMember(userID uuid.UUID, isAdmin bool) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if ok, _ := f.MemberOf(userID); ok {
		return shared.NewDomainError("ALREADY_MEMBER", "User is already a member of this fams")
	}
	f.Members = append(f.Members, FamsMember{FamsID: f.ID, UserID: userID, IsAdmin: isAdmin})
	f.Touch()
	return nil
}

// RemoveMember removes a user; the last admin cannot leave.
func (f *Fams) RemoveMember(userID uuid.UUID) error {
	idx := -1
	admins := 0
	for i, m := range f.Members {
		if m.IsAdmin {
			admins++
		}
		if m.UserID == userID {
			idx = i
		}
	}
	if idx == -1 {
		return shared.NewDomainError("NOT_MEMBER", "User is not a member of this fams")
	}
	if f.Members[idx].IsAdmin && admins == 1 {
		return shared.NewDomainError("LAST_ADMIN", "Cannot remove the last admin of a fams")
	}
	f.Members = append(f.Members[:idx], f.Members[idx+1:]...)
	f.Touch()
	return nil
}

// PromoteAdmin grants admin rights to an existing member
func (f *Fams) PromoteAdmin(userID uuid.UUID) error {
	for i := range f.Members {
		if f.Members[i].UserID == userID {
			f.Members[i].IsAdmin = true
			f.Touch()
			return nil
		}
	}
	return shared.NewDomainError("NOT_MEMBER", "User is not a member of this fams")
}
