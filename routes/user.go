package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sportmeet-server/models"
	"sportmeet-server/utils"
)

// UserRoutes is the identity provider surface: registration, credential
// and social logins, token refresh and the profile endpoint.
type UserRoutes struct {
	db     *gorm.DB
	tokens *utils.TokenService
}

func NewUserRoutes(db *gorm.DB, tokens *utils.TokenService) *UserRoutes {
	return &UserRoutes{db: db, tokens: tokens}
}

type registerUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
}

type loginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleUserInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type googleUserRes struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type appleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

// POST /api/user/register
func (r *UserRoutes) Register(ctx iris.Context) {
	var input registerUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(input.Email)
	exists, err := r.userExists(email)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	if exists {
		utils.Error(ctx, iris.StatusConflict, "email_taken", "Email already registered.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	user := models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     email,
		Password:  string(hashed),
	}
	if err := r.db.Create(&user).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}
	r.returnUser(ctx, user, iris.StatusCreated)
}

// POST /api/user/login
func (r *UserRoutes) Login(ctx iris.Context) {
	var input loginUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	const badCredentials = "Invalid email or password."
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error
	if err != nil {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", badCredentials)
		return
	}
	if user.SocialLogin {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", "Social login account.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", badCredentials)
		return
	}
	r.returnUser(ctx, user, iris.StatusOK)
}

// POST /api/user/google
func (r *UserRoutes) GoogleLoginOrSignUp(ctx iris.Context) {
	var input googleUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	req, _ := http.NewRequest("GET", "https://www.googleapis.com/userinfo/v2/me", nil)
	req.Header.Set("Authorization", "Bearer "+input.AccessToken)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var googleBody googleUserRes
	json.Unmarshal(body, &googleBody)
	if googleBody.Email == "" {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", "Google token could not be verified.")
		return
	}

	r.socialLoginOrSignUp(ctx, googleBody.Email, googleBody.GivenName, googleBody.FamilyName, "Google")
}

// POST /api/user/apple
//
// Verifies the identity token against Apple's published JWKS.
func (r *UserRoutes) AppleLoginOrSignUp(ctx iris.Context) {
	var input appleUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := http.Get("https://appleid.apple.com/auth/keys")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	jwks, err := keyfunc.NewJSON(body)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	token, err := jwtv4.Parse(input.IdentityToken, jwks.Keyfunc)
	if err != nil || !token.Valid {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", "Apple identity token could not be verified.")
		return
	}

	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", "Apple identity token could not be verified.")
		return
	}
	email, _ := claims["email"].(string)
	if email == "" {
		utils.Error(ctx, iris.StatusUnauthorized, "credentials_error", "Apple identity token carries no email.")
		return
	}

	r.socialLoginOrSignUp(ctx, email, "", "", "Apple")
}

// GET /api/user/me
func (r *UserRoutes) Me(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, iris.StatusUnauthorized, "unauthorized", "Authentication required.")
		return
	}
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, iris.StatusNotFound, "not_found", "User not found.")
		return
	}
	utils.Success(ctx, user)
}

func (r *UserRoutes) userExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRoutes) socialLoginOrSignUp(ctx iris.Context, email, firstName, lastName, provider string) {
	email = strings.ToLower(email)

	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		user = models.User{
			FirstName:      firstName,
			LastName:       lastName,
			Email:          email,
			SocialLogin:    true,
			SocialProvider: provider,
		}
		if err := r.db.Create(&user).Error; err != nil {
			utils.RespondError(ctx, err)
			return
		}
		r.returnUser(ctx, user, iris.StatusCreated)
		return
	}

	if user.SocialLogin && user.SocialProvider == provider {
		r.returnUser(ctx, user, iris.StatusOK)
		return
	}
	utils.Error(ctx, iris.StatusConflict, "email_taken", "Email already registered with another method.")
}

func (r *UserRoutes) returnUser(ctx iris.Context, user models.User, status int) {
	tokenPair, err := r.tokens.CreateTokenPair(user.ID)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"success": true,
		"data": iris.Map{
			"user":         user,
			"accessToken":  string(tokenPair.AccessToken),
			"refreshToken": string(tokenPair.RefreshToken),
		},
	})
}
