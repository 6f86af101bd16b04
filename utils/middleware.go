package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"sportmeet-server/services"
)

// claims pulls the verified access token off the context; a missing or
// foreign claim type means the verifier was not in front of this route.
func claims(ctx iris.Context) (*AccessToken, bool) {
	tok := jwt.Get(ctx)
	if tok == nil {
		return nil, false
	}
	at, ok := tok.(*AccessToken)
	return at, ok
}

// UserIDFromToken extracts the authenticated user ID and role into the
// context values for downstream handlers.
func UserIDFromToken(ctx iris.Context) {
	at, ok := claims(ctx)
	if !ok {
		Error(ctx, iris.StatusUnauthorized, "unauthorized", "Authentication required.")
		return
	}
	ctx.Values().Set("userID", at.ID)
	ctx.Values().Set("userRole", at.Role)
	ctx.Next()
}

// AdminOnly ensures the requester holds a moderator role.
func AdminOnly(ctx iris.Context) {
	at, ok := claims(ctx)
	if !ok {
		Error(ctx, iris.StatusUnauthorized, "unauthorized", "Authentication required.")
		return
	}
	role, ok := services.ParseRole(at.Role)
	if !ok || !role.CanModerate() {
		Error(ctx, iris.StatusForbidden, "forbidden", "Admin access required.")
		return
	}
	ctx.Values().Set("userID", at.ID)
	ctx.Values().Set("userRole", at.Role)
	ctx.Next()
}

// SuperAdminOnly restricts a route to super admins.
func SuperAdminOnly(ctx iris.Context) {
	at, ok := claims(ctx)
	if !ok {
		Error(ctx, iris.StatusUnauthorized, "unauthorized", "Authentication required.")
		return
	}
	role, ok := services.ParseRole(at.Role)
	if !ok || !role.IsSuperAdmin() {
		Error(ctx, iris.StatusForbidden, "forbidden", "Super admin access required.")
		return
	}
	ctx.Values().Set("userID", at.ID)
	ctx.Values().Set("userRole", at.Role)
	ctx.Next()
}

// CurrentUserID returns the authenticated user ID set by the middlewares.
func CurrentUserID(ctx iris.Context) (uint, bool) {
	v := ctx.Values().Get("userID")
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
