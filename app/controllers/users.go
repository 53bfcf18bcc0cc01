package controllers

import (
	"errors"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/orm"
	"github.com/sparkcrackers/storefront/pkg/validate"
)

type UserController struct {
	users *repositories.UserRepository
}

func NewUserController(users *repositories.UserRepository) *UserController {
	return &UserController{users: users}
}

// Profile handles GET /users/profile.
func (u *UserController) Profile(c *ctx.Context) {
	user, ok := u.current(c)
	if !ok {
		return
	}
	c.OK(user)
}

// UpdateProfile handles PUT /users/profile. Empty fields keep their stored
// value; a non-nil address replaces the stored one.
func (u *UserController) UpdateProfile(c *ctx.Context) {
	var in models.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	if in.Address != nil {
		if msg := validate.Value("address.pincode", in.Address.Pincode, "nullable,digits=6"); msg != "" {
			c.Invalid(map[string]string{"address.pincode": msg})
			return
		}
	}

	user, ok := u.current(c)
	if !ok {
		return
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	if in.Address != nil {
		user.Address = *in.Address
	}

	if err := u.users.Update(c.Context(), &user); err != nil {
		c.ServerError(err)
		return
	}
	c.OK(user)
}

func (u *UserController) current(c *ctx.Context) (models.User, bool) {
	user, err := u.users.FindByID(c.Context(), c.UserID())
	if errors.Is(err, orm.ErrNotFound) {
		c.NotFound("User not found")
		return user, false
	}
	if err != nil {
		c.ServerError(err)
		return user, false
	}
	return user, true
}
