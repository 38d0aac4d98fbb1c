package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/simpleblog/middleware"
	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

// AuthController handles login, signup and the current account.
type AuthController struct {
	auth  *services.AuthService
	users *services.UserService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(auth *services.AuthService, users *services.UserService) *AuthController {
	return &AuthController{auth: auth, users: users}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=72"`
}

// Login verifies credentials and issues a new access token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := bindJSON(ctx, &req); err != nil {
		utils.Abort(ctx, err)
		return
	}

	session, err := a.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	resp := gin.H{"access_token": session.AccessToken}
	if session.ExpiresAt != nil {
		resp["expires_at"] = session.ExpiresAt
	}
	ctx.JSON(http.StatusOK, resp)
}

// Signup registers a new account.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req signupRequest
	if err := bindJSON(ctx, &req); err != nil {
		utils.Abort(ctx, err)
		return
	}

	user, err := a.users.Signup(ctx.Request.Context(), services.Signup{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	utils.Sugar.Infof("user %d signed up", user.ID)
	ctx.Status(http.StatusOK)
}

// Logout revokes the token the request was authorized with.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.auth.Logout(ctx.Request.Context(), middleware.CurrentToken(ctx)); err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Abort(ctx, services.ErrUnauthorized)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// DeleteMe removes the current account together with all of its sessions.
func (a *AuthController) DeleteMe(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Abort(ctx, services.ErrUnauthorized)
		return
	}
	if err := a.users.Delete(ctx.Request.Context(), userID); err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

// Foo is a minimal protected endpoint that echoes the caller's user id.
func (a *AuthController) Foo(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	ctx.JSON(http.StatusOK, gin.H{"user_id": userID})
}
