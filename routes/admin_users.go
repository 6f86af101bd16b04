package routes

import (
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"sportmeet-server/models"
	"sportmeet-server/services"
	"sportmeet-server/utils"
)

type AdminUserRoutes struct {
	db      *gorm.DB
	auditor *utils.Auditor
}

func NewAdminUserRoutes(db *gorm.DB, auditor *utils.Auditor) *AdminUserRoutes {
	return &AdminUserRoutes{db: db, auditor: auditor}
}

// GET /api/admin/users
func (r *AdminUserRoutes) List(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))
	role := ctx.URLParamDefault("role", "")

	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&users).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Page(ctx, users, page, perPage, total)
}

type updateRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// PATCH /api/admin/users/{id}/role — super admin only.
func (r *AdminUserRoutes) UpdateRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.Error(ctx, iris.StatusBadRequest, "invalid_id", "Invalid user id.")
		return
	}
	var input updateRoleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	role, ok := services.ParseRole(input.Role)
	if !ok {
		utils.Error(ctx, iris.StatusBadRequest, "validation_error", "Role must be user, admin or super_admin.")
		return
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "User not found.")
		return
	}
	before := user
	user.Role = string(role)
	if err := r.db.Save(&user).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.auditor.Log(ctx, "user.role_update", "user", user.ID, before, user)
	utils.Success(ctx, user)
}
