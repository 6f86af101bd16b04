package routes

import (
	"encoding/json"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"sportmeet-server/models"
	"sportmeet-server/utils"
)

// NewsRoutes serves editorial content and platform announcements. Public
// reads, admin writes.
type NewsRoutes struct {
	db      *gorm.DB
	auditor *utils.Auditor
}

func NewNewsRoutes(db *gorm.DB, auditor *utils.Auditor) *NewsRoutes {
	return &NewsRoutes{db: db, auditor: auditor}
}

// GET /api/news
func (r *NewsRoutes) List(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 10)
	if perPage <= 0 || perPage > 100 {
		perPage = 10
	}
	sportID := ctx.URLParamInt64Default("sport_id", 0)

	q := r.db.Model(&models.NewsItem{})
	if sportID != 0 {
		q = q.Where("sport_id = ?", sportID)
	}

	var total int64
	q.Count(&total)

	var items []models.NewsItem
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("published_at DESC").Find(&items).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, items, page, perPage, total)
}

// GET /api/news/{id}
func (r *NewsRoutes) Get(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid news id.")
		return
	}
	var item models.NewsItem
	if err := r.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "News item not found.")
		return
	}
	utils.Success(ctx, item)
}

type newsInput struct {
	Title       string   `json:"title" validate:"required,max=256"`
	Summary     string   `json:"summary" validate:"max=500"`
	Body        string   `json:"body"`
	ImageURL    string   `json:"imageURL"`
	SourceURL   string   `json:"sourceURL"`
	SportID     *uint    `json:"sportID"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"` // RFC3339, defaults to now
}

// POST /api/admin/news
func (r *NewsRoutes) Create(ctx iris.Context) {
	var input newsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	publishedAt := time.Now()
	if input.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, input.PublishedAt)
		if err != nil {
			utils.Error(ctx, iris.StatusBadRequest, "validation_error", "publishedAt must be RFC3339.")
			return
		}
		publishedAt = t
	}

	item := models.NewsItem{
		Title:       input.Title,
		Summary:     input.Summary,
		Body:        input.Body,
		ImageURL:    input.ImageURL,
		SourceURL:   input.SourceURL,
		SportID:     input.SportID,
		PublishedAt: publishedAt,
	}
	if len(input.Tags) > 0 {
		item.Tags, _ = json.Marshal(input.Tags)
	}
	if err := r.db.Create(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "news.create", "news", item.ID, nil, item)
	utils.Created(ctx, item)
}

type newsUpdateInput struct {
	Title       *string  `json:"title"`
	Summary     *string  `json:"summary"`
	Body        *string  `json:"body"`
	ImageURL    *string  `json:"imageURL"`
	SourceURL   *string  `json:"sourceURL"`
	SportID     *uint    `json:"sportID"`
	Tags        []string `json:"tags"`
	PublishedAt *string  `json:"publishedAt"` // RFC3339
}

// PATCH /api/admin/news/{id}
func (r *NewsRoutes) Update(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid news id.")
		return
	}
	var item models.NewsItem
	if err := r.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "News item not found.")
		return
	}

	var input newsUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := item
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Summary != nil {
		item.Summary = *input.Summary
	}
	if input.Body != nil {
		item.Body = *input.Body
	}
	if input.ImageURL != nil {
		item.ImageURL = *input.ImageURL
	}
	if input.SourceURL != nil {
		item.SourceURL = *input.SourceURL
	}
	if input.SportID != nil {
		item.SportID = input.SportID
	}
	if input.Tags != nil {
		item.Tags, _ = json.Marshal(input.Tags)
	}
	if input.PublishedAt != nil {
		t, err := time.Parse(time.RFC3339, *input.PublishedAt)
		if err != nil {
			utils.Error(ctx, iris.StatusBadRequest, "validation_error", "publishedAt must be RFC3339.")
			return
		}
		item.PublishedAt = t
	}
	if err := r.db.Save(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "news.update", "news", item.ID, before, item)
	utils.Success(ctx, item)
}

// DELETE /api/admin/news/{id}
func (r *NewsRoutes) Delete(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid news id.")
		return
	}
	var item models.NewsItem
	if err := r.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "News item not found.")
		return
	}
	if err := r.db.Delete(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "news.delete", "news", item.ID, item, nil)
	utils.Message(ctx, "News item deleted.")
}

// GET /api/announcements
func (r *NewsRoutes) ListAnnouncements(ctx iris.Context) {
	now := time.Now()
	var items []models.Announcement
	err := r.db.Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Success(ctx, items)
}

type announcementInput struct {
	Title    string `json:"title" validate:"required,max=256"`
	Body     string `json:"body" validate:"required"`
	IsActive *bool  `json:"isActive"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// POST /api/admin/announcements
func (r *NewsRoutes) CreateAnnouncement(ctx iris.Context) {
	var input announcementInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	item := models.Announcement{Title: input.Title, Body: input.Body, IsActive: true}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, input.StartsAt)
		if err != nil {
			utils.Error(ctx, iris.StatusBadRequest, "validation_error", "startsAt must be RFC3339.")
			return
		}
		item.StartsAt = &t
	}
	if input.EndsAt != "" {
		t, err := time.Parse(time.RFC3339, input.EndsAt)
		if err != nil {
			utils.Error(ctx, iris.StatusBadRequest, "validation_error", "endsAt must be RFC3339.")
			return
		}
		item.EndsAt = &t
	}
	if err := r.db.Create(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "announcement.create", "announcement", item.ID, nil, item)
	utils.Created(ctx, item)
}

type announcementUpdateInput struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"isActive"`
	StartsAt *string `json:"startsAt"` // RFC3339; empty string clears the bound
	EndsAt   *string `json:"endsAt"`
}

// PATCH /api/admin/announcements/{id}
func (r *NewsRoutes) UpdateAnnouncement(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid announcement id.")
		return
	}
	var item models.Announcement
	if err := r.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "Announcement not found.")
		return
	}

	var input announcementUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := item
	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Body != nil {
		item.Body = *input.Body
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.StartsAt != nil {
		if *input.StartsAt == "" {
			item.StartsAt = nil
		} else {
			t, err := time.Parse(time.RFC3339, *input.StartsAt)
			if err != nil {
				utils.Error(ctx, iris.StatusBadRequest, "validation_error", "startsAt must be RFC3339.")
				return
			}
			item.StartsAt = &t
		}
	}
	if input.EndsAt != nil {
		if *input.EndsAt == "" {
			item.EndsAt = nil
		} else {
			t, err := time.Parse(time.RFC3339, *input.EndsAt)
			if err != nil {
				utils.Error(ctx, iris.StatusBadRequest, "validation_error", "endsAt must be RFC3339.")
				return
			}
			item.EndsAt = &t
		}
	}
	if err := r.db.Save(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "announcement.update", "announcement", item.ID, before, item)
	utils.Success(ctx, item)
}

// DELETE /api/admin/announcements/{id}
func (r *NewsRoutes) DeleteAnnouncement(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid announcement id.")
		return
	}
	var item models.Announcement
	if err := r.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "Announcement not found.")
		return
	}
	if err := r.db.Delete(&item).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "announcement.delete", "announcement", item.ID, item, nil)
	utils.Message(ctx, "Announcement deleted.")
}
