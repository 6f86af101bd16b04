package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"sportmeet-server/models"
	"sportmeet-server/services"
	"sportmeet-server/utils"
)

// AdminEventRoutes is the moderation surface: review queue, approve/reject
// decisions, the manual sweep trigger and the dashboard counts. All routes
// sit behind the AdminOnly middleware.
type AdminEventRoutes struct {
	events  *services.EventService
	db      *gorm.DB
	auditor *utils.Auditor
}

func NewAdminEventRoutes(events *services.EventService, db *gorm.DB, auditor *utils.Auditor) *AdminEventRoutes {
	return &AdminEventRoutes{events: events, db: db, auditor: auditor}
}

// GET /api/admin/events/pending
func (r *AdminEventRoutes) Pending(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 10)

	events, total, err := r.events.Pending(page, perPage)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, events, page, perPage, total)
}

// POST /api/admin/events/{id}/approve
func (r *AdminEventRoutes) Approve(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	event, err := r.events.Approve(id)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "event.approve", "event", event.ID, nil, event)
	utils.Success(ctx, event)
}

type rejectEventInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// POST /api/admin/events/{id}/reject
func (r *AdminEventRoutes) Reject(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid event id.")
		return
	}
	var input rejectEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	event, err := r.events.Reject(id, input.Reason)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "event.reject", "event", event.ID, nil, event)
	utils.Success(ctx, event)
}

// POST /api/admin/events/sweep-expired
//
// Archives events that expired while still waiting for review. The daily
// ticker calls the same service method; this endpoint exists for manual
// runs and external cron triggers.
func (r *AdminEventRoutes) SweepExpired(ctx iris.Context) {
	count, err := r.events.SweepExpiredPending(time.Now())
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "event.sweep_expired", "event", 0, nil, iris.Map{"count": count})
	utils.Success(ctx, iris.Map{"count": count})
}

// GET /api/admin/stats
func (r *AdminEventRoutes) Stats(ctx iris.Context) {
	var users, participants, news int64
	var pending, approved, rejected int64

	r.db.Model(&models.User{}).Count(&users)
	r.db.Model(&models.EventParticipant{}).Count(&participants)
	r.db.Model(&models.NewsItem{}).Count(&news)
	r.db.Model(&models.Event{}).Where("approval_status = ?", models.ApprovalPending).Count(&pending)
	r.db.Model(&models.Event{}).Where("approval_status = ?", models.ApprovalApproved).Count(&approved)
	r.db.Model(&models.Event{}).Where("approval_status = ?", models.ApprovalRejected).Count(&rejected)

	utils.Success(ctx, iris.Map{
		"users":        users,
		"participants": participants,
		"news":         news,
		"events": iris.Map{
			"pending":  pending,
			"approved": approved,
			"rejected": rejected,
			"total":    pending + approved + rejected,
		},
	})
}
