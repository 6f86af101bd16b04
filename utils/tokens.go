package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"sportmeet-server/models"
)

var bgContext = context.Background()

// AccessToken is the claim set embedded in access tokens. Role travels in
// the token so middlewares never hit the database.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

// TokenService signs access/refresh token pairs and keeps the refresh
// whitelist in Redis.
type TokenService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewTokenService(db *gorm.DB, redis *redis.Client) *TokenService {
	return &TokenService{db: db, redis: redis}
}

func (t *TokenService) CreateTokenPair(id uint) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	userID := strconv.FormatUint(uint64(id), 10)
	refreshClaims := jwt.Claims{Subject: userID}

	// Embed the current role into the access token.
	role := "user"
	var u models.User
	if err := t.db.Select("id, role").First(&u, id).Error; err == nil && u.Role != "" {
		role = u.Role
	}

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}
	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if t.redis != nil {
		t.redis.Set(bgContext, string(refreshToken), "true", 365*24*time.Hour+5*time.Minute)
	}
	return &tokenPair, nil
}

// Refresh rotates a whitelisted refresh token into a fresh pair. Register
// behind the refresh-token verifier.
func (t *TokenService) Refresh(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	// Without Redis the whitelist is off and the signature alone vouches
	// for the token, mirroring CreateTokenPair.
	if t.redis != nil {
		valid, err := t.redis.Get(bgContext, tokenStr).Result()
		if err != nil {
			Error(ctx, iris.StatusUnauthorized, "unauthorized", "Refresh token is not recognized.")
			return
		}
		if valid != "true" {
			Error(ctx, iris.StatusForbidden, "forbidden", "Refresh token has been revoked.")
			return
		}
		t.redis.Del(bgContext, tokenStr)
	}

	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		Error(ctx, iris.StatusInternalServerError, "server_error", "Something went wrong.")
		return
	}

	tokenPair, pairErr := t.CreateTokenPair(uint(userID))
	if pairErr != nil {
		Error(ctx, iris.StatusInternalServerError, "server_error", "Something went wrong.")
		return
	}

	Success(ctx, iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
