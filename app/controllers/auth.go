// Package controllers holds the sandbox API handlers. Each controller takes
// its repositories in the constructor and exposes ctx.HandlerFunc methods
// that app/routes mounts.
package controllers

import (
	"errors"
	"net/http"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/auth"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

type AuthController struct {
	users *repositories.UserRepository
}

func NewAuthController(users *repositories.UserRepository) *AuthController {
	return &AuthController{users: users}
}

// Login handles POST /auth/login.
func (a *AuthController) Login(c *ctx.Context) {
	var in models.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := a.users.FindByEmail(c.Context(), in.Email)
	if errors.Is(err, orm.ErrNotFound) || (err == nil && !auth.CheckPassword(user.Password, in.Password)) {
		c.Error(http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		c.ServerError(err)
		return
	}

	a.respond(c, http.StatusOK, user)
}

// Register handles POST /auth/register.
func (a *AuthController) Register(c *ctx.Context) {
	var in models.SignupInput
	if !c.BindJSON(&in) {
		return
	}

	_, err := a.users.FindByEmail(c.Context(), in.Email)
	switch {
	case err == nil:
		c.Invalid(map[string]string{"email": "An account with this email already exists."})
		return
	case !errors.Is(err, orm.ErrNotFound):
		c.ServerError(err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		c.ServerError(err)
		return
	}
	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      models.RoleUser,
		Password:  hash,
	}
	if err := a.users.Create(c.Context(), &user); err != nil {
		c.ServerError(err)
		return
	}

	logger.WithCtx(c.Context()).Info("auth: user registered", "user_id", user.ID)
	a.respond(c, http.StatusCreated, user)
}

func (a *AuthController) respond(c *ctx.Context, status int, user models.User) {
	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.ServerError(err)
		return
	}
	c.JSON(status, models.AuthResponse{User: user, Token: token})
}
