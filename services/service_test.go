package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportmeet-server/models"
	"sportmeet-server/storage"
)

// newTestDB opens an in-memory sqlite database. MaxOpenConns(1) keeps every
// connection on the same memory database and serializes concurrent
// transactions, which stands in for Postgres row locking in tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, role Role) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", userSeq),
		Email:     fmt.Sprintf("user%d@example.com", userSeq),
		Role:      string(role),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedSport(t *testing.T, db *gorm.DB) *models.Sport {
	t.Helper()
	sport := models.Sport{
		Name:     models.SportNames{En: "Football", Fr: "Football", Ar: "كرة القدم"},
		IsActive: true,
	}
	if err := db.Create(&sport).Error; err != nil {
		t.Fatalf("seed sport: %v", err)
	}
	return &sport
}

func validCreateInput(sportID uint) CreateEventInput {
	return CreateEventInput{
		SportID:      sportID,
		Title:        "Weekend Football Meetup",
		Description:  "Friendly 5-a-side game.",
		LocationName: "Central Park Pitch 2",
		Latitude:     40.78,
		Longitude:    -73.96,
		EventDate:    time.Now().AddDate(0, 0, 7),
		StartTime:    "18:30",
		EndTime:      "20:00",
	}
}

// seedApprovedEvent creates an event through the service and approves it so
// it is joinable.
func seedApprovedEvent(t *testing.T, db *gorm.DB, creatorID, sportID uint, maxParticipants int) *models.Event {
	t.Helper()
	svc := NewEventService(db)
	in := validCreateInput(sportID)
	in.Title = fmt.Sprintf("Event %d", time.Now().UnixNano())
	in.MaxParticipants = maxParticipants
	event, err := svc.Create(creatorID, in)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	event, err = svc.Approve(event.ID)
	if err != nil {
		t.Fatalf("approve event: %v", err)
	}
	return event
}
