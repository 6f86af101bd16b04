package routes

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportmeet-server/models"
	"sportmeet-server/services"
	"sportmeet-server/storage"
	"sportmeet-server/utils"
)

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

var seq int

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	seq++
	user := models.User{
		FirstName: "Route",
		LastName:  fmt.Sprintf("Tester%d", seq),
		Email:     fmt.Sprintf("route%d@example.com", seq),
		Role:      role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedSport(t *testing.T, db *gorm.DB) *models.Sport {
	t.Helper()
	sport := models.Sport{Name: models.SportNames{En: "Basketball"}, IsActive: true}
	if err := db.Create(&sport).Error; err != nil {
		t.Fatalf("seed sport: %v", err)
	}
	return &sport
}

// signTestToken returns a signed access token for the given user.
func signTestToken(t *testing.T, user *models.User) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(utils.AccessToken{ID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(token)
}

// buildTestApp wires the event and admin surface against a test database,
// mirroring the wiring in main.
func buildTestApp(t *testing.T, db *gorm.DB) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	eventService := services.NewEventService(db)
	participationService := services.NewParticipationService(db)
	auditor := utils.NewAuditor(db)

	eventRoutes := NewEventRoutes(eventService, participationService)
	adminEventRoutes := NewAdminEventRoutes(eventService, db, auditor)
	newsRoutes := NewNewsRoutes(db, auditor)

	app := iris.New()
	app.Validator = validator.New()

	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	authenticated := verifier.Verify(func() interface{} { return new(utils.AccessToken) })

	events := app.Party("/api/events")
	{
		events.Get("/", eventRoutes.List)
		events.Get("/slug/{slug}", eventRoutes.GetBySlug)
		events.Get("/{id:uint}", eventRoutes.Get)
		events.Post("/", authenticated, utils.UserIDFromToken, eventRoutes.Create)
		events.Patch("/{id:uint}", authenticated, utils.UserIDFromToken, eventRoutes.Update)
		events.Delete("/{id:uint}", authenticated, utils.UserIDFromToken, eventRoutes.Delete)
		events.Post("/{id:uint}/join", authenticated, utils.UserIDFromToken, eventRoutes.Join)
		events.Post("/{id:uint}/leave", authenticated, utils.UserIDFromToken, eventRoutes.Leave)
	}

	app.Get("/api/news/{id:uint}", newsRoutes.Get)
	app.Get("/api/announcements", newsRoutes.ListAnnouncements)

	admin := app.Party("/api/admin", authenticated, utils.AdminOnly)
	{
		admin.Get("/events/pending", adminEventRoutes.Pending)
		admin.Post("/events/sweep-expired", adminEventRoutes.SweepExpired)
		admin.Post("/events/{id:uint}/approve", adminEventRoutes.Approve)
		admin.Post("/events/{id:uint}/reject", adminEventRoutes.Reject)

		admin.Post("/news", newsRoutes.Create)
		admin.Patch("/news/{id:uint}", newsRoutes.Update)
		admin.Delete("/news/{id:uint}", newsRoutes.Delete)
		admin.Post("/announcements", newsRoutes.CreateAnnouncement)
		admin.Patch("/announcements/{id:uint}", newsRoutes.UpdateAnnouncement)
		admin.Delete("/announcements/{id:uint}", newsRoutes.DeleteAnnouncement)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}
