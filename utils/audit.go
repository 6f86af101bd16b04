package utils

import (
	"encoding/json"
	"net"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"sportmeet-server/models"
)

// Auditor records admin mutations. Failures are logged, never surfaced:
// an audit write must not fail the moderation action itself.
type Auditor struct {
	db *gorm.DB
}

func NewAuditor(db *gorm.DB) *Auditor {
	return &Auditor{db: db}
}

func (a *Auditor) Log(ctx iris.Context, action, resourceType string, resourceID uint, before, after interface{}) {
	var beforeStr, afterStr string
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeStr = string(b)
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			afterStr = string(b)
		}
	}

	adminID, _ := CurrentUserID(ctx)
	entry := models.AuditLog{
		AdminUserID:  adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   beforeStr,
		AfterJSON:    afterStr,
		IPAddress:    clientIP(ctx),
	}
	if err := a.db.Create(&entry).Error; err != nil {
		ctx.Application().Logger().Warnf("audit write failed: %v", err)
	}
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(ctx.RemoteAddr())
	return ip
}
