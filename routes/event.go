package routes

import (
	"encoding/json"
	"time"

	"github.com/kataras/iris/v12"

	"sportmeet-server/services"
	"sportmeet-server/utils"
)

// EventRoutes exposes the event lifecycle and participation surface.
type EventRoutes struct {
	events        *services.EventService
	participation *services.ParticipationService
}

func NewEventRoutes(events *services.EventService, participation *services.ParticipationService) *EventRoutes {
	return &EventRoutes{events: events, participation: participation}
}

type createEventInput struct {
	SportID         uint     `json:"sportID" validate:"required"`
	Title           string   `json:"title" validate:"required,max=140"`
	Description     string   `json:"description" validate:"required"`
	LocationName    string   `json:"locationName" validate:"required"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	EventDate       string   `json:"eventDate" validate:"required"` // "2006-01-02"
	StartTime       string   `json:"startTime" validate:"required"`
	EndTime         string   `json:"endTime" validate:"required"`
	MaxParticipants int      `json:"maxParticipants" validate:"gte=0"`
	Photos          []string `json:"photos"`
}

// POST /api/events
func (r *EventRoutes) Create(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, iris.StatusUnauthorized, "unauthorized", "Authentication required.")
		return
	}

	var input createEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	eventDate, err := time.Parse("2006-01-02", input.EventDate)
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "validation_error", "eventDate must be formatted as YYYY-MM-DD.")
		return
	}

	var photos []byte
	if len(input.Photos) > 0 {
		photos, _ = json.Marshal(input.Photos)
	}

	event, err := r.events.Create(userID, services.CreateEventInput{
		SportID:         input.SportID,
		Title:           input.Title,
		Description:     input.Description,
		LocationName:    input.LocationName,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		EventDate:       eventDate,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		MaxParticipants: input.MaxParticipants,
		Photos:          photos,
	})
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Created(ctx, event)
}

// GET /api/events
func (r *EventRoutes) List(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 10)
	sportID := uint(ctx.URLParamInt64Default("sport_id", 0))
	search := ctx.URLParamDefault("q", "")

	events, total, err := r.events.List(services.ListOptions{
		Page:       page,
		PerPage:    perPage,
		SportID:    sportID,
		Search:     search,
		ActiveOnly: true,
	})
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, events, page, perPage, total)
}

// GET /api/events/{id}
func (r *EventRoutes) Get(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	event, err := r.events.Get(id)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	count, err := r.participation.Count(event.ID)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, iris.Map{"event": event, "participantCount": count})
}

// GET /api/events/slug/{slug}
func (r *EventRoutes) GetBySlug(ctx iris.Context) {
	event, err := r.events.GetBySlug(ctx.Params().Get("slug"))
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	count, err := r.participation.Count(event.ID)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, iris.Map{"event": event, "participantCount": count})
}

// GET /api/events/{id}/participants
func (r *EventRoutes) ListParticipants(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	if _, err := r.events.Get(id); err != nil {
		utils.RespondError(ctx, err)
		return
	}
	records, err := r.participation.Participants(id)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, records)
}

// GET /api/events/mine
func (r *EventRoutes) Mine(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 10)

	events, total, err := r.events.ListByCreator(userID, page, perPage)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, events, page, perPage, total)
}

// GET /api/events/joined
func (r *EventRoutes) Joined(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 10)

	events, total, err := r.events.ListJoined(userID, page, perPage)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, events, page, perPage, total)
}

type updateEventInput struct {
	SportID         *uint    `json:"sportID"`
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	LocationName    *string  `json:"locationName"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	EventDate       *string  `json:"eventDate"`
	StartTime       *string  `json:"startTime"`
	EndTime         *string  `json:"endTime"`
	MaxParticipants *int     `json:"maxParticipants"`
	Status          *string  `json:"status"`
	Photos          []string `json:"photos"`
}

// PATCH /api/events/{id}
func (r *EventRoutes) Update(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}

	var input updateEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	patch := services.UpdateEventInput{
		SportID:         input.SportID,
		Title:           input.Title,
		Description:     input.Description,
		LocationName:    input.LocationName,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		MaxParticipants: input.MaxParticipants,
		Status:          input.Status,
	}
	if input.EventDate != nil {
		eventDate, err := time.Parse("2006-01-02", *input.EventDate)
		if err != nil {
			utils.Error(ctx, iris.StatusBadRequest, "validation_error", "eventDate must be formatted as YYYY-MM-DD.")
			return
		}
		patch.EventDate = &eventDate
	}
	if len(input.Photos) > 0 {
		patch.Photos, _ = json.Marshal(input.Photos)
	}

	event, err := r.events.Update(id, userID, patch)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, event)
}

// DELETE /api/events/{id}
func (r *EventRoutes) Delete(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	if err := r.events.Delete(id, userID); err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Message(ctx, "Event deleted.")
}

// POST /api/events/{id}/join
func (r *EventRoutes) Join(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	record, err := r.participation.Join(id, userID)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, record)
}

// POST /api/events/{id}/leave
func (r *EventRoutes) Leave(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	if err := r.participation.Leave(id, userID); err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Message(ctx, "Left the event.")
}
