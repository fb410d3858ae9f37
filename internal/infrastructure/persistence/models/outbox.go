package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// OutboxEntryModel is the GORM model for outbox entries
type OutboxEntryModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string     `gorm:"type:varchar(100);not null;index"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AggregateType string     `gorm:"type:varchar(100);not null"`
	Payload       string     `gorm:"type:jsonb;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:PENDING;index:idx_outbox_status_created,priority:1"`
	RetryCount    int        `gorm:"not null;default:0"`
	MaxRetries    int        `gorm:"not null;default:5"`
	LastError     string     `gorm:"type:text"`
	NextRetryAt   *time.Time `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (OutboxEntryModel) TableName() string {
	return "outbox_events"
}

// ToDomain converts the persistence model to a domain entity
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       []byte(m.Payload),
		Status:        shared.OutboxStatus(m.Status),
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain entity
func (m *OutboxEntryModel) FromDomain(entry *shared.OutboxEntry) {
	m.ID = entry.ID
	m.EventID = entry.EventID
	m.EventType = entry.EventType
	m.AggregateID = entry.AggregateID
	m.AggregateType = entry.AggregateType
	m.Payload = string(entry.Payload)
	m.Status = string(entry.Status)
	m.RetryCount = entry.RetryCount
	m.MaxRetries = entry.MaxRetries
	m.LastError = entry.LastError
	m.NextRetryAt = entry.NextRetryAt
	m.ProcessedAt = entry.ProcessedAt
	m.CreatedAt = entry.CreatedAt
	m.UpdatedAt = entry.UpdatedAt
}
