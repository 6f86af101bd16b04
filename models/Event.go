package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Operational status values.
const (
	EventStatusActive   = "active"
	EventStatusInactive = "inactive"
)

// Moderation status values. Approved and rejected are terminal.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Event struct {
	gorm.Model
	CreatorID uint `json:"creatorID" gorm:"not null;index"`
	Creator   User `json:"creator" gorm:"foreignKey:CreatorID"`

	SportID uint  `json:"sportID" gorm:"not null;index"`
	Sport   Sport `json:"sport" gorm:"foreignKey:SportID"`

	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:160;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`

	LocationName string  `json:"locationName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`

	EventDate time.Time `json:"eventDate" gorm:"index"`
	StartTime string    `json:"startTime"` // "18:30"
	EndTime   string    `json:"endTime"`   // "20:00"

	// 0 means unlimited.
	MaxParticipants int `json:"maxParticipants"`

	Status          string `json:"status" gorm:"size:16;default:active;index"`
	ApprovalStatus  string `json:"approvalStatus" gorm:"size:16;default:pending;index"`
	RejectionReason string `json:"rejectionReason" gorm:"size:500"`

	Photos datatypes.JSON `json:"photos"`

	Participants []EventParticipant `json:"participants,omitempty" gorm:"foreignKey:EventID"`
}

// Joinable reports whether the event accepts new participants at all;
// capacity is checked separately against the live participant count.
func (e *Event) Joinable() bool {
	return e.ApprovalStatus == ApprovalApproved && e.Status == EventStatusActive
}

// EventParticipant links a user to an event. The composite unique index is
// the authoritative guard against duplicate joins.
type EventParticipant struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	EventID uint `json:"eventID" gorm:"not null;uniqueIndex:idx_event_user"`
	UserID  uint `json:"userID" gorm:"not null;uniqueIndex:idx_event_user"`
	User    User `json:"user" gorm:"foreignKey:UserID"`

	Role     string    `json:"role" gorm:"size:20;default:participant"`
	JoinedAt time.Time `json:"joinedAt"`
}
