package models

import (
	"github.com/google/uuid"

	"github.com/kasso/backend/internal/domain/wallet"
)

// UserAccountModel is the persistence model for a personal wallet
type UserAccountModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName  string `gorm:"type:varchar(200)"`
	BalanceCents int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UserAccountModel) TableName() string {
	return "user_accounts"
}

// ToDomain converts the persistence model to a domain UserAccount
func (m *UserAccountModel) ToDomain() *wallet.UserAccount {
	return &wallet.UserAccount{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		BalanceCents: m.BalanceCents,
	}
}

// FromDomain populates the persistence model from a domain UserAccount
func (m *UserAccountModel) FromDomain(u *wallet.UserAccount) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.DisplayName = u.DisplayName
	m.BalanceCents = u.BalanceCents
}

// UserAccountModelFromDomain creates a persistence model from a domain UserAccount
func UserAccountModelFromDomain(u *wallet.UserAccount) *UserAccountModel {
	m := &UserAccountModel{}
	m.FromDomain(u)
	return m
}

// FamsModel is the persistence model for a shared fams wallet
type FamsModel struct {
	BaseModel
	Name         string            `gorm:"type:varchar(200);not null"`
	BalanceCents int64             `gorm:"not null;default:0"`
	Members      []FamsMemberModel `gorm:"foreignKey:FamsID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (FamsModel) TableName() string {
	return "fams"
}

// ToDomain converts the persistence model to a domain Fams
func (m *FamsModel) ToDomain() *wallet.Fams {
	f := &wallet.Fams{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		BalanceCents: m.BalanceCents,
	}
	for _, member := range m.Members {
		f.Members = append(f.Members, wallet.FamsMember{
			FamsID:  member.FamsID,
			UserID:  member.UserID,
			IsAdmin: member.IsAdmin,
		})
	}
	return f
}

// FromDomain populates the persistence model from a domain Fams
func (m *FamsModel) FromDomain(f *wallet.Fams) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Name = f.Name
	m.BalanceCents = f.BalanceCents
	m.Members = m.Members[:0]
	for _, member := range f.Members {
		m.Members = append(m.Members, FamsMemberModel{
			FamsID:  member.FamsID,
			UserID:  member.UserID,
			IsAdmin: member.IsAdmin,
		})
	}
}

// FamsModelFromDomain creates a persistence model from a domain Fams
func FamsModelFromDomain(f *wallet.Fams) *FamsModel {
	m := &FamsModel{}
	m.FromDomain(f)
	return m
}

// FamsMemberModel is one membership row of a fams wallet
type FamsMemberModel struct {
	FamsID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	IsAdmin bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (FamsMemberModel) TableName() string {
	return "fams_members"
}

// TransactionModel is the persistence model for one ledger entry.
// ProviderReference is nullable so that only provider top-ups occupy the
// unique index; empty references stay NULL.
type TransactionModel struct {
	BaseModel
	Type              wallet.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status            wallet.TransactionStatus `gorm:"type:varchar(20);not null;index"`
	WalletSource      wallet.WalletSource      `gorm:"type:varchar(20);not null"`
	AmountCents       int64                    `gorm:"not null"`
	IssuerID          uuid.UUID                `gorm:"type:uuid;not null;index"`
	TargetUserID      *uuid.UUID               `gorm:"type:uuid;index"`
	FamsID            *uuid.UUID               `gorm:"type:uuid;index"`
	ReceiverUserID    *uuid.UUID               `gorm:"type:uuid"`
	ShopID            *uuid.UUID               `gorm:"type:uuid;index"`
	ProductID         *uuid.UUID               `gorm:"type:uuid"`
	Quantity          int                      `gorm:"not null"`
	EventID           *uuid.UUID               `gorm:"type:uuid;index"`
	ProviderReference *string                  `gorm:"type:varchar(200);uniqueIndex"`
	Description       string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *wallet.Transaction {
	tx := &wallet.Transaction{
		BaseEntity:     m.BaseModel.ToDomain(),
		Type:           m.Type,
		Status:         m.Status,
		WalletSource:   m.WalletSource,
		AmountCents:    m.AmountCents,
		IssuerID:       m.IssuerID,
		TargetUserID:   m.TargetUserID,
		FamsID:         m.FamsID,
		ReceiverUserID: m.ReceiverUserID,
		ShopID:         m.ShopID,
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		EventID:        m.EventID,
		Description:    m.Description,
	}
	if m.ProviderReference != nil {
		tx.ProviderReference = *m.ProviderReference
	}
	return tx
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(tx *wallet.Transaction) {
	m.FromDomainBaseEntity(tx.BaseEntity)
	m.Type = tx.Type
	m.Status = tx.Status
	m.WalletSource = tx.WalletSource
	m.AmountCents = tx.AmountCents
	m.IssuerID = tx.IssuerID
	m.TargetUserID = tx.TargetUserID
	m.FamsID = tx.FamsID
	m.ReceiverUserID = tx.ReceiverUserID
	m.ShopID = tx.ShopID
	m.ProductID = tx.ProductID
	m.Quantity = tx.Quantity
	m.EventID = tx.EventID
	m.Description = tx.Description
	if tx.ProviderReference != "" {
		ref := tx.ProviderReference
		m.ProviderReference = &ref
	} else {
		m.ProviderReference = nil
	}
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction
func TransactionModelFromDomain(tx *wallet.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(tx)
	return m
}
