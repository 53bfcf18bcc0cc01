package services

import (
	"context"
	"errors"
	"sync"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/validate"
)

// AuthService signs shoppers in and out and edits their profile.
type AuthService struct {
	client  *api.Client
	session *Session

	mu  sync.RWMutex
	err error
}

func NewAuthService(client *api.Client, session *Session) *AuthService {
	return &AuthService{client: client, session: session}
}

// Login exchanges credentials for a session. On failure any stored session
// is cleared.
func (a *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	in := models.LoginInput{Email: email, Password: password}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return a.fail(ctx, validationError(errs))
	}

	var resp models.AuthResponse
	if err := a.client.Post(ctx, "/auth/login", in, "auth.login", "Login failed", &resp); err != nil {
		return a.fail(ctx, err)
	}
	return a.start(ctx, resp, "Login failed")
}

// Signup registers a new shopper and signs them in.
func (a *AuthService) Signup(ctx context.Context, in models.SignupInput) (models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return a.fail(ctx, validationError(errs))
	}

	var resp models.AuthResponse
	if err := a.client.Post(ctx, "/auth/register", in, "auth.register", "Signup failed", &resp); err != nil {
		return a.fail(ctx, err)
	}
	return a.start(ctx, resp, "Signup failed")
}

func (a *AuthService) start(ctx context.Context, resp models.AuthResponse, fallback string) (models.User, error) {
	if resp.Token == "" {
		return a.fail(ctx, &api.Error{Status: 200, Message: fallback})
	}
	if err := a.session.Start(ctx, resp.Token, resp.User); err != nil {
		return a.fail(ctx, err)
	}
	a.setErr(nil)
	logger.WithCtx(ctx).Info("auth: signed in", "user_id", resp.User.ID)
	return resp.User, nil
}

func (a *AuthService) fail(ctx context.Context, err error) (models.User, error) {
	if cerr := a.session.Clear(ctx); cerr != nil {
		logger.WithCtx(ctx).Error("auth: clear session", "error", cerr)
	}
	a.setErr(err)
	return models.User{}, err
}

// Logout clears the session locally. There is no server-side logout.
func (a *AuthService) Logout(ctx context.Context) error {
	a.setErr(nil)
	return a.session.Clear(ctx)
}

// Profile fetches the current profile and refreshes the stored copy.
func (a *AuthService) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	if err := a.client.Get(ctx, "/users/profile", "users.profile", "Failed to load profile", &user); err != nil {
		a.setErr(err)
		return models.User{}, err
	}
	if err := a.session.SetUser(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// UpdateProfile saves profile changes. A failure leaves the session as it
// was, except that a 401 still signs the shopper out through the client.
func (a *AuthService) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error) {
	if !a.session.IsAuthenticated() {
		err := &api.Error{Status: 401, Message: "Please login to update your profile"}
		a.setErr(err)
		return models.User{}, err
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		err := validationError(errs)
		a.setErr(err)
		return models.User{}, err
	}

	var user models.User
	if err := a.client.Put(ctx, "/users/profile", in, "users.update", "Failed to update profile", &user); err != nil {
		a.setErr(err)
		return models.User{}, err
	}
	if err := a.session.SetUser(ctx, user); err != nil {
		a.setErr(err)
		return user, err
	}
	a.setErr(nil)
	return user, nil
}

func (a *AuthService) setErr(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

// Err is the message of the last failed action, or nil.
func (a *AuthService) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// IsValidation reports whether err came from local validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
