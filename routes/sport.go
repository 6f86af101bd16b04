package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"sportmeet-server/models"
	"sportmeet-server/utils"
)

// SportRoutes manages the sport reference data events point at.
type SportRoutes struct {
	db      *gorm.DB
	auditor *utils.Auditor
}

func NewSportRoutes(db *gorm.DB, auditor *utils.Auditor) *SportRoutes {
	return &SportRoutes{db: db, auditor: auditor}
}

// GET /api/sports
func (r *SportRoutes) List(ctx iris.Context) {
	var sports []models.Sport
	if err := r.db.Where("is_active = ?", true).Order("sort_order ASC, id ASC").Find(&sports).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, sports)
}

type sportInput struct {
	Name        models.SportNames `json:"name"`
	Icon        string            `json:"icon"`
	Description models.SportNames `json:"description"`
	IsActive    *bool             `json:"isActive"`
	SortOrder   int               `json:"sortOrder"`
}

// POST /api/admin/sports
func (r *SportRoutes) Create(ctx iris.Context) {
	var input sportInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Name.En == "" {
		utils.Error(ctx, iris.StatusBadRequest, "validation_error", "name.en is required.")
		return
	}

	sport := models.Sport{
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	if input.IsActive != nil {
		sport.IsActive = *input.IsActive
	}
	if err := r.db.Create(&sport).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "sport.create", "sport", sport.ID, nil, sport)
	utils.Created(ctx, sport)
}

// PATCH /api/admin/sports/{id}
func (r *SportRoutes) Update(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid sport id.")
		return
	}
	var sport models.Sport
	if err := r.db.First(&sport, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "Sport not found.")
		return
	}

	var input sportInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := sport
	if input.Name.En != "" {
		sport.Name = input.Name
	}
	if input.Icon != "" {
		sport.Icon = input.Icon
	}
	if input.Description.En != "" {
		sport.Description = input.Description
	}
	if input.IsActive != nil {
		sport.IsActive = *input.IsActive
	}
	if input.SortOrder != 0 {
		sport.SortOrder = input.SortOrder
	}
	if err := r.db.Save(&sport).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "sport.update", "sport", sport.ID, before, sport)
	utils.Success(ctx, sport)
}

// DELETE /api/admin/sports/{id}
func (r *SportRoutes) Delete(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid sport id.")
		return
	}
	var sport models.Sport
	if err := r.db.First(&sport, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "Sport not found.")
		return
	}

	var events int64
	r.db.Model(&models.Event{}).Where("sport_id = ?", id).Count(&events)
	if events > 0 {
		utils.Error(ctx, iris.StatusConflict, "sport_in_use", "Sport is referenced by existing events.")
		return
	}

	if err := r.db.Delete(&sport).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "sport.delete", "sport", sport.ID, sport, nil)
	utils.Message(ctx, "Sport deleted.")
}
