package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sportmeet-server/models"
)

// ParticipationService owns join/leave bookkeeping. The capacity and
// duplicate checks run inside a single transaction holding a row lock on
// the event, so two racing joins for the last slot can never both land;
// the (event_id, user_id) unique index backs the duplicate check at the
// store level.
type ParticipationService struct {
	db *gorm.DB
}

func NewParticipationService(db *gorm.DB) *ParticipationService {
	return &ParticipationService{db: db}
}

// Join registers userID on the event as a participant.
func (s *ParticipationService) Join(eventID, userID uint) (*models.EventParticipant, error) {
	var record models.EventParticipant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if !event.Joinable() {
			return ErrEventNotJoinable
		}

		var existing models.EventParticipant
		err = tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error
		if err == nil {
			return ErrAlreadyParticipant
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if event.MaxParticipants > 0 {
			var count int64
			if err := tx.Model(&models.EventParticipant{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(event.MaxParticipants) {
				return ErrEventFull
			}
		}

		record = models.EventParticipant{
			EventID:  eventID,
			UserID:   userID,
			Role:     "participant",
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyParticipant
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Leave removes userID's participation record. Leaving an event never
// joined is an explicit error, not a silent no-op.
func (s *ParticipationService) Leave(eventID, userID uint) error {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	res := s.db.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.EventParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotParticipant
	}
	return nil
}

// Count returns the live participant count of an event.
func (s *ParticipationService) Count(eventID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.EventParticipant{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// IsParticipant reports whether userID currently participates in eventID.
func (s *ParticipationService) IsParticipant(eventID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// Participants lists the participation records of an event with the user
// preloaded for display.
func (s *ParticipationService) Participants(eventID uint) ([]models.EventParticipant, error) {
	var records []models.EventParticipant
	err := s.db.Preload("User").
		Where("event_id = ?", eventID).
		Order("joined_at ASC").
		Find(&records).Error
	return records, err
}
