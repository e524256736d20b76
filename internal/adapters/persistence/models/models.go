package models

import (
	"time"

	"gearbook-backend/internal/core/domain"
)

// ============================================================
// Core Tables: Resources & Reservations
// ============================================================

type Resource struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Kind        string    `gorm:"size:20;not null;index" json:"kind"`
	Granularity string    `gorm:"size:10;not null" json:"granularity"`
	Department  string    `gorm:"size:100" json:"department"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

func (m *Resource) ToDomain() domain.Resource {
	return domain.Resource{
		ID:          m.ID,
		Name:        m.Name,
		Kind:        domain.ResourceKind(m.Kind),
		Granularity: domain.Granularity(m.Granularity),
		Department:  m.Department,
		IsActive:    m.IsActive,
	}
}

type Reservation struct {
	ID                string     `gorm:"type:char(36);primaryKey" json:"id"`
	ResourceID        string     `gorm:"type:char(36);not null;index" json:"resource_id"`
	RequesterID       string     `gorm:"size:64;not null;index" json:"requester_id"`
	Status            string     `gorm:"size:15;default:'pending';index" json:"status"`
	StartDate         time.Time  `gorm:"type:date;not null;index" json:"start_date"`
	EndDate           time.Time  `gorm:"type:date;not null;index" json:"end_date"`
	OriginalEndDate   *time.Time `gorm:"type:date" json:"original_end_date"`
	WeekendExtended   bool       `gorm:"default:false" json:"weekend_extended"`
	SlotStartMinute   *int       `json:"slot_start_minute"`
	SlotEndMinute     *int       `json:"slot_end_minute"`
	Purpose           string     `gorm:"size:255" json:"purpose"`
	RecurrenceGroupID *string    `gorm:"type:char(36);index" json:"recurrence_group_id"`
	DecidedBy         *string    `gorm:"size:64" json:"decided_by"`
	DecidedAt         *time.Time `json:"decided_at"`
	DenialReason      *string    `gorm:"size:255" json:"denial_reason"`
	ReturnedAt        *time.Time `json:"returned_at"`
	ReminderSent      bool       `gorm:"default:false" json:"reminder_sent"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Resource          Resource   `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// ToDomain converts the row to the engine-facing view. Slot columns map
// to a minute range only when both are set.
func (m *Reservation) ToDomain() domain.Reservation {
	window := domain.Window{
		Dates: domain.DateRange{
			Start: domain.Midnight(m.StartDate),
			End:   domain.Midnight(m.EndDate),
		},
	}
	if m.SlotStartMinute != nil && m.SlotEndMinute != nil {
		window.Slot = &domain.TimeRange{
			StartMinute: *m.SlotStartMinute,
			EndMinute:   *m.SlotEndMinute,
		}
	}
	return domain.Reservation{
		ID:           m.ID,
		ResourceID:   m.ResourceID,
		RequesterID:  m.RequesterID,
		Window:       window,
		Status:       domain.ReservationStatus(m.Status),
		Purpose:      m.Purpose,
		CreatedAt:    m.CreatedAt,
		DecidedBy:    m.DecidedBy,
		DecidedAt:    m.DecidedAt,
		DenialReason: m.DenialReason,
		ReturnedAt:   m.ReturnedAt,
	}
}

// ReservationsToDomain converts a result set in query order
func ReservationsToDomain(rows []Reservation) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

// ============================================================
// Strike Tables: Records & Derived Standing
// ============================================================

type StrikeRecord struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`
	SubjectID       string     `gorm:"size:64;not null;index" json:"subject_id"`
	ReservationID   string     `gorm:"type:char(36);index" json:"reservation_id"`
	StrikeNumber    int        `gorm:"not null" json:"strike_number"`
	DaysOverdue     int        `gorm:"default:0" json:"days_overdue"`
	RestrictionDays int        `gorm:"default:0" json:"restriction_days"`
	IssuedBy        *string    `gorm:"size:64" json:"issued_by"`
	IssuedAt        time.Time  `gorm:"not null" json:"issued_at"`
	RevokedAt       *time.Time `json:"revoked_at"`
	RevokedBy       *string    `gorm:"size:64" json:"revoked_by"`
	RevokeReason    *string    `gorm:"size:255" json:"revoke_reason"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (StrikeRecord) TableName() string {
	return "strike_records"
}

func (m *StrikeRecord) ToDomain() domain.StrikeRecord {
	return domain.StrikeRecord{
		ID:              m.ID,
		SubjectID:       m.SubjectID,
		ReservationID:   m.ReservationID,
		StrikeNumber:    m.StrikeNumber,
		DaysOverdue:     m.DaysOverdue,
		RestrictionDays: m.RestrictionDays,
		IssuedBy:        m.IssuedBy,
		IssuedAt:        m.IssuedAt,
		RevokedAt:       m.RevokedAt,
		RevokedBy:       m.RevokedBy,
		RevokeReason:    m.RevokeReason,
	}
}

// StrikeRecordsToDomain converts a result set in query order
func StrikeRecordsToDomain(rows []StrikeRecord) []domain.StrikeRecord {
	out := make([]domain.StrikeRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

// SubjectStrikeState is the denormalized standing of one subject,
// recomputed inside the same transaction as every strike mutation.
type SubjectStrikeState struct {
	SubjectID      string     `gorm:"size:64;primaryKey" json:"subject_id"`
	StrikeCount    int        `gorm:"default:0" json:"strike_count"`
	BlacklistUntil *time.Time `gorm:"index" json:"blacklist_until"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SubjectStrikeState) TableName() string {
	return "subject_strike_states"
}
