package main

import (
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"sportmeet-server/routes"
	"sportmeet-server/services"
	"sportmeet-server/storage"
	"sportmeet-server/utils"
)

func main() {
	db, err := storage.Open()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	redisClient := storage.NewRedis()

	eventService := services.NewEventService(db)
	participationService := services.NewParticipationService(db)
	tokenService := utils.NewTokenService(db, redisClient)
	auditor := utils.NewAuditor(db)

	userRoutes := routes.NewUserRoutes(db, tokenService)
	eventRoutes := routes.NewEventRoutes(eventService, participationService)
	adminEventRoutes := routes.NewAdminEventRoutes(eventService, db, auditor)
	adminUserRoutes := routes.NewAdminUserRoutes(db, auditor)
	sportRoutes := routes.NewSportRoutes(db, auditor)
	newsRoutes := routes.NewNewsRoutes(db, auditor)

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})
	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	authenticated := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshVerified := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", userRoutes.Register)
		user.Post("/login", userRoutes.Login)
		user.Post("/google", userRoutes.GoogleLoginOrSignUp)
		user.Post("/apple", userRoutes.AppleLoginOrSignUp)
		user.Post("/refresh", refreshVerified, tokenService.Refresh)
		user.Get("/me", authenticated, utils.UserIDFromToken, userRoutes.Me)
	}

	events := app.Party("/api/events")
	{
		events.Get("/", eventRoutes.List)
		events.Get("/slug/{slug}", eventRoutes.GetBySlug)
		events.Get("/{id:uint}", eventRoutes.Get)
		events.Get("/{id:uint}/participants", eventRoutes.ListParticipants)

		events.Get("/mine", authenticated, utils.UserIDFromToken, eventRoutes.Mine)
		events.Get("/joined", authenticated, utils.UserIDFromToken, eventRoutes.Joined)
		events.Post("/", authenticated, utils.UserIDFromToken, eventRoutes.Create)
		events.Patch("/{id:uint}", authenticated, utils.UserIDFromToken, eventRoutes.Update)
		events.Delete("/{id:uint}", authenticated, utils.UserIDFromToken, eventRoutes.Delete)
		events.Post("/{id:uint}/join", authenticated, utils.UserIDFromToken, eventRoutes.Join)
		events.Post("/{id:uint}/leave", authenticated, utils.UserIDFromToken, eventRoutes.Leave)
	}

	app.Get("/api/sports", sportRoutes.List)
	app.Get("/api/news", newsRoutes.List)
	app.Get("/api/news/{id:uint}", newsRoutes.Get)
	app.Get("/api/announcements", newsRoutes.ListAnnouncements)

	admin := app.Party("/api/admin", authenticated, utils.AdminOnly)
	{
		admin.Get("/events/pending", adminEventRoutes.Pending)
		admin.Post("/events/sweep-expired", adminEventRoutes.SweepExpired)
		admin.Post("/events/{id:uint}/approve", adminEventRoutes.Approve)
		admin.Post("/events/{id:uint}/reject", adminEventRoutes.Reject)
		admin.Get("/stats", adminEventRoutes.Stats)

		admin.Get("/users", adminUserRoutes.List)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnly, adminUserRoutes.UpdateRole)

		admin.Post("/sports", sportRoutes.Create)
		admin.Patch("/sports/{id:uint}", sportRoutes.Update)
		admin.Delete("/sports/{id:uint}", sportRoutes.Delete)

		admin.Post("/news", newsRoutes.Create)
		admin.Patch("/news/{id:uint}", newsRoutes.Update)
		admin.Delete("/news/{id:uint}", newsRoutes.Delete)
		admin.Post("/announcements", newsRoutes.CreateAnnouncement)
		admin.Patch("/announcements/{id:uint}", newsRoutes.UpdateAnnouncement)
		admin.Delete("/announcements/{id:uint}", newsRoutes.DeleteAnnouncement)
	}

	// Daily sweep of events that expired before review. The admin endpoint
	// triggers the same path for manual runs.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			count, err := eventService.SweepExpiredPending(time.Now())
			if err != nil {
				app.Logger().Errorf("expiry sweep failed: %v", err)
				continue
			}
			if count > 0 {
				app.Logger().Infof("expiry sweep archived %d events", count)
			}
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	app.Listen(":" + port)
}
