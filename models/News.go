package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewsItem is editorial content; fully admin-managed, public read-only.
type NewsItem struct {
	gorm.Model
	Title       string         `json:"title" gorm:"not null"`
	Summary     string         `json:"summary" gorm:"size:500"`
	Body        string         `json:"body" gorm:"type:text"`
	ImageURL    string         `json:"imageURL"`
	SourceURL   string         `json:"sourceURL"`
	SportID     *uint          `json:"sportID" gorm:"index"`
	Tags        datatypes.JSON `json:"tags"`
	PublishedAt time.Time      `json:"publishedAt" gorm:"index"`
}

// Announcement is a platform-wide notice shown between StartsAt and EndsAt.
type Announcement struct {
	gorm.Model
	Title    string     `json:"title" gorm:"not null"`
	Body     string     `json:"body" gorm:"type:text"`
	IsActive bool       `json:"isActive" gorm:"default:true;index"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}
