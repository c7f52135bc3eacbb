package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kasso/backend/internal/domain/event"
)

// EventModel is the persistence model for an event with its financial rows
type EventModel struct {
	BaseModel
	ShopID                uuid.UUID                `gorm:"type:uuid;not null;index"`
	Name                  string                   `gorm:"type:varchar(200);not null"`
	Type                  event.EventType          `gorm:"type:varchar(20);not null"`
	Status                event.EventStatus        `gorm:"type:varchar(20);not null;index"`
	AcompteCents          int64                    `gorm:"not null;default:0"`
	AcompteCollectedCents int64                    `gorm:"not null;default:0"`
	ClosedAt              *time.Time
	Revenues              []EventRevenueModel      `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Expenses              []EventExpenseModel      `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Splits                []EventExpenseSplitModel `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Participants          []EventParticipantModel  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (EventModel) TableName() string {
	return "events"
}

// EventRevenueModel is one manual revenue row
type EventRevenueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label       string    `gorm:"type:varchar(200)"`
	AmountCents int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EventRevenueModel) TableName() string {
	return "event_revenues"
}

// EventExpenseModel is one direct expense row
type EventExpenseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Label       string    `gorm:"type:varchar(200)"`
	AmountCents int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EventExpenseModel) TableName() string {
	return "event_expenses"
}

// EventExpenseSplitModel is one expense split row
type EventExpenseSplitModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Label       string     `gorm:"type:varchar(200)"`
	AmountCents int64      `gorm:"not null"`
	UserID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EventExpenseSplitModel) TableName() string {
	return "event_expense_splits"
}

// EventParticipantModel is one enrollment row
type EventParticipantModel struct {
	EventID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EventParticipantModel) TableName() string {
	return "event_participants"
}

// ToDomain converts the persistence model to a domain Event
func (m *EventModel) ToDomain() *event.Event {
	e := &event.Event{
		BaseEntity:            m.BaseModel.ToDomain(),
		ShopID:                m.ShopID,
		Name:                  m.Name,
		Type:                  m.Type,
		Status:                m.Status,
		AcompteCents:          m.AcompteCents,
		AcompteCollectedCents: m.AcompteCollectedCents,
		ClosedAt:              m.ClosedAt,
	}
	for _, r := range m.Revenues {
		e.Revenues = append(e.Revenues, event.Revenue{
			ID: r.ID, EventID: r.EventID, Label: r.Label, AmountCents: r.AmountCents, CreatedAt: r.CreatedAt,
		})
	}
	for _, x := range m.Expenses {
		e.Expenses = append(e.Expenses, event.Expense{
			ID: x.ID, EventID: x.EventID, Label: x.Label, AmountCents: x.AmountCents, CreatedAt: x.CreatedAt,
		})
	}
	for _, s := range m.Splits {
		e.Splits = append(e.Splits, event.ExpenseSplit{
			ID: s.ID, EventID: s.EventID, Label: s.Label, AmountCents: s.AmountCents, UserID: s.UserID, CreatedAt: s.CreatedAt,
		})
	}
	for _, p := range m.Participants {
		e.Participants = append(e.Participants, event.Participant{
			EventID: p.EventID, UserID: p.UserID, JoinedAt: p.JoinedAt,
		})
	}
	return e
}

// FromDomain populates the persistence model from a domain Event
func (m *EventModel) FromDomain(e *event.Event) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.ShopID = e.ShopID
	m.Name = e.Name
	m.Type = e.Type
	m.Status = e.Status
	m.AcompteCents = e.AcompteCents
	m.AcompteCollectedCents = e.AcompteCollectedCents
	m.ClosedAt = e.ClosedAt
	m.Revenues = m.Revenues[:0]
	for _, r := range e.Revenues {
		m.Revenues = append(m.Revenues, EventRevenueModel{
			ID: r.ID, EventID: r.EventID, Label: r.Label, AmountCents: r.AmountCents, CreatedAt: r.CreatedAt,
		})
	}
	m.Expenses = m.Expenses[:0]
	for _, x := range e.Expenses {
		m.Expenses = append(m.Expenses, EventExpenseModel{
			ID: x.ID, EventID: x.EventID, Label: x.Label, AmountCents: x.AmountCents, CreatedAt: x.CreatedAt,
		})
	}
	m.Splits = m.Splits[:0]
	for _, s := range e.Splits {
		m.Splits = append(m.Splits, EventExpenseSplitModel{
			ID: s.ID, EventID: s.EventID, Label: s.Label, AmountCents: s.AmountCents, UserID: s.UserID, CreatedAt: s.CreatedAt,
		})
	}
	m.Participants = m.Participants[:0]
	for _, p := range e.Participants {
		m.Participants = append(m.Participants, EventParticipantModel{
			EventID: p.EventID, UserID: p.UserID, JoinedAt: p.JoinedAt,
		})
	}
}

// EventModelFromDomain creates a persistence model from a domain Event
func EventModelFromDomain(e *event.Event) *EventModel {
	m := &EventModel{}
	m.FromDomain(e)
	return m
}
