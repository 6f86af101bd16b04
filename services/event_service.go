package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"sportmeet-server/models"
)

// EventService owns the event lifecycle: creation, owner-gated mutation,
// the pending -> approved/rejected moderation flow and the expiry sweep.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

type CreateEventInput struct {
	SportID         uint
	Title           string
	Description     string
	LocationName    string
	Latitude        float64
	Longitude       float64
	EventDate       time.Time
	StartTime       string
	EndTime         string
	MaxParticipants int
	Photos          []byte
}

func (in *CreateEventInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.LocationName) == "" {
		missing = append(missing, "locationName")
	}
	if in.EventDate.IsZero() {
		missing = append(missing, "eventDate")
	}
	if strings.TrimSpace(in.StartTime) == "" {
		missing = append(missing, "startTime")
	}
	if strings.TrimSpace(in.EndTime) == "" {
		missing = append(missing, "endTime")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if in.MaxParticipants < 0 {
		return fmt.Errorf("%w: maxParticipants must be >= 0", ErrValidation)
	}
	return nil
}

// Create stores a new event for creatorID. Moderation always starts at
// pending and the operational status at active, no matter what the caller
// sent; all new events pass through review.
func (s *EventService) Create(creatorID uint, in CreateEventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var sport models.Sport
	if err := s.db.First(&sport, in.SportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSport
		}
		return nil, err
	}

	event := models.Event{
		CreatorID:       creatorID,
		SportID:         in.SportID,
		Title:           in.Title,
		Slug:            Slugify(in.Title),
		Description:     in.Description,
		LocationName:    in.LocationName,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		EventDate:       in.EventDate,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		MaxParticipants: in.MaxParticipants,
		Status:          models.EventStatusActive,
		ApprovalStatus:  models.ApprovalPending,
		Photos:          in.Photos,
	}

	if err := s.db.Create(&event).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, err
		}
		// Slug collision: retry once with a random suffix.
		event.Slug = event.Slug + "-" + shortToken(3)
		if err := s.db.Create(&event).Error; err != nil {
			return nil, err
		}
	}
	return &event, nil
}

func (s *EventService) Get(id uint) (*models.Event, error) {
	var event models.Event
	err := s.db.Preload("Sport").Preload("Creator").First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) GetBySlug(slug string) (*models.Event, error) {
	var event models.Event
	err := s.db.Preload("Sport").Preload("Creator").Where("slug = ?", slug).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

type ListOptions struct {
	Page    int
	PerPage int
	SportID uint
	Search  string
	// ActiveOnly limits to publicly visible events: operationally active
	// and approved by moderation.
	ActiveOnly bool
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// List returns one page of events ordered by event date ascending plus the
// total row count for page-count computation.
func (s *EventService) List(opts ListOptions) ([]models.Event, int64, error) {
	page, perPage := normalizePage(opts.Page, opts.PerPage)

	q := s.db.Model(&models.Event{})
	if opts.ActiveOnly {
		q = q.Where("status = ? AND approval_status = ?", models.EventStatusActive, models.ApprovalApproved)
	}
	if opts.SportID != 0 {
		q = q.Where("sport_id = ?", opts.SportID)
	}
	if opts.Search != "" {
		like := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(location_name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := q.Preload("Sport").
		Offset((page - 1) * perPage).Limit(perPage).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByCreator returns the events a user created, newest first.
func (s *EventService) ListByCreator(creatorID uint, page, perPage int) ([]models.Event, int64, error) {
	page, perPage = normalizePage(page, perPage)

	q := s.db.Model(&models.Event{}).Where("creator_id = ?", creatorID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.Event
	err := q.Preload("Sport").
		Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at DESC").
		Find(&events).Error
	return events, total, err
}

// ListJoined returns the events a user participates in, soonest first.
func (s *EventService) ListJoined(userID uint, page, perPage int) ([]models.Event, int64, error) {
	page, perPage = normalizePage(page, perPage)

	q := s.db.Model(&models.Event{}).
		Joins("JOIN event_participants ep ON ep.event_id = events.id").
		Where("ep.user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.Event
	err := q.Preload("Sport").
		Offset((page - 1) * perPage).Limit(perPage).
		Order("events.event_date ASC").
		Find(&events).Error
	return events, total, err
}

// Pending lists events awaiting moderation for the admin review queue.
func (s *EventService) Pending(page, perPage int) ([]models.Event, int64, error) {
	page, perPage = normalizePage(page, perPage)

	q := s.db.Model(&models.Event{}).Where("approval_status = ?", models.ApprovalPending)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.Event
	err := q.Preload("Sport").Preload("Creator").
		Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at ASC").
		Find(&events).Error
	return events, total, err
}

type UpdateEventInput struct {
	SportID         *uint
	Title           *string
	Description     *string
	LocationName    *string
	Latitude        *float64
	Longitude       *float64
	EventDate       *time.Time
	StartTime       *string
	EndTime         *string
	MaxParticipants *int
	Status          *string
	Photos          []byte
}

// Update applies a partial patch. Only the creator may mutate an event;
// moderators have no special mutation rights here, only over approval.
func (s *EventService) Update(id, actorID uint, in UpdateEventInput) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, ErrForbidden
	}

	if in.SportID != nil {
		var sport models.Sport
		if err := s.db.First(&sport, *in.SportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownSport
			}
			return nil, err
		}
		event.SportID = *in.SportID
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		event.Title = *in.Title
		event.Slug = Slugify(*in.Title)
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.LocationName != nil {
		event.LocationName = *in.LocationName
	}
	if in.Latitude != nil {
		event.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		event.Longitude = *in.Longitude
	}
	if in.EventDate != nil {
		event.EventDate = *in.EventDate
	}
	if in.StartTime != nil {
		event.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		event.EndTime = *in.EndTime
	}
	if in.MaxParticipants != nil {
		if *in.MaxParticipants < 0 {
			return nil, fmt.Errorf("%w: maxParticipants must be >= 0", ErrValidation)
		}
		event.MaxParticipants = *in.MaxParticipants
	}
	if in.Status != nil {
		if *in.Status != models.EventStatusActive && *in.Status != models.EventStatusInactive {
			return nil, fmt.Errorf("%w: status must be active or inactive", ErrValidation)
		}
		event.Status = *in.Status
	}
	if in.Photos != nil {
		event.Photos = in.Photos
	}

	if err := s.db.Save(&event).Error; err != nil {
		if isDuplicateKey(err) && in.Title != nil {
			event.Slug = event.Slug + "-" + shortToken(3)
			if err := s.db.Save(&event).Error; err != nil {
				return nil, err
			}
			return &event, nil
		}
		return nil, err
	}
	return &event, nil
}

// Delete removes an event and all its participation records in one
// transaction. Same ownership gate as Update.
func (s *EventService) Delete(id, actorID uint) error {
	var event models.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if event.CreatorID != actorID {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

// Approve moves a pending event to approved. Re-deciding an already
// decided event is rejected so moderation cannot flap.
func (s *EventService) Approve(id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.ApprovalStatus != models.ApprovalPending {
		return nil, ErrNotPending
	}
	event.ApprovalStatus = models.ApprovalApproved
	if err := s.db.Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Reject moves a pending event to rejected, keeping the moderator's reason.
func (s *EventService) Reject(id uint, reason string) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.ApprovalStatus != models.ApprovalPending {
		return nil, ErrNotPending
	}
	event.ApprovalStatus = models.ApprovalRejected
	event.RejectionReason = reason
	if err := s.db.Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// SweepExpiredPending archives events whose date passed before review ever
// happened: status goes inactive, approval stays pending. The status guard
// in the predicate makes a second run a no-op.
func (s *EventService) SweepExpiredPending(now time.Time) (int64, error) {
	res := s.db.Model(&models.Event{}).
		Where("approval_status = ? AND status = ? AND event_date < ?",
			models.ApprovalPending, models.EventStatusActive, now).
		Update("status", models.EventStatusInactive)
	return res.RowsAffected, res.Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
