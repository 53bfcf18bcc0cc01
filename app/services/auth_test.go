package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/session"
)

func mountLogin(f *fakeAPI) {
	f.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in models.LoginInput
		decode(f.t, r, &in)
		if in.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		writeJSON(w, 200, models.AuthResponse{User: shopper, Token: "tok-u1"})
	})
}

func TestLogin_Success(t *testing.T) {
	f := newFakeAPI(t)
	mountLogin(f)
	(&cartHandler{items: []models.CartItem{{Product: sparkler, Quantity: 2}}}).mount(f)
	sf, store := newStorefront(t, f)

	u, err := sf.Auth.Login(context.Background(), shopper.Email, "secret1")
	require.NoError(t, err)

	assert.Equal(t, shopper.ID, u.ID)
	assert.True(t, sf.Session.IsAuthenticated())
	assert.Equal(t, "tok-u1", sf.Session.Token())
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 1, f.count("GET /api/cart"), "login re-fetches the cart")
	assert.Equal(t, 2, sf.Cart.ItemCount())
}

func TestLogin_WrongPasswordClearsSession(t *testing.T) {
	f := newFakeAPI(t)
	mountLogin(f)
	sf, store := newStorefront(t, f)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, "old"))
	require.NoError(t, store.Set(context.Background(), session.KeyUser, `{"_id":"old"}`))

	_, err := sf.Auth.Login(context.Background(), shopper.Email, "nope")
	require.Error(t, err)

	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, err, sf.Auth.Err())
	assert.False(t, sf.Session.IsAuthenticated())
	assert.Zero(t, store.Len())
}

func TestLogin_FallbackMessage(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	sf, _ := newStorefront(t, f)

	_, err := sf.Auth.Login(context.Background(), shopper.Email, "x")
	assert.EqualError(t, err, "Login failed")
}

func TestSignup_ValidatesLocally(t *testing.T) {
	f := newFakeAPI(t)
	sf, _ := newStorefront(t, f)

	_, err := sf.Auth.Signup(context.Background(), models.SignupInput{
		Email: "not-an-email", Password: "123", Phone: "12",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "firstName")
	assert.Contains(t, v.Fields, "email")
	assert.Contains(t, v.Fields, "password")
	assert.Contains(t, v.Fields, "phone")
	assert.Zero(t, f.total(), "validation errors never reach the network")
}

func TestSignup_Success(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in models.SignupInput
		decode(f.t, r, &in)
		writeJSON(w, 201, models.AuthResponse{
			User:  models.User{ID: "u9", FirstName: in.FirstName, Email: in.Email, Role: models.RoleUser},
			Token: "tok-u9",
		})
	})
	sf, _ := newStorefront(t, f)

	u, err := sf.Auth.Signup(context.Background(), models.SignupInput{
		FirstName: "Kiran", Email: "kiran@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)
	assert.True(t, sf.Session.IsAuthenticated())
}

func TestUpdateProfile_FailureKeepsSession(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("PUT /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	sf, store := newStorefront(t, f)
	signIn(t, sf, shopper)

	_, err := sf.Auth.UpdateProfile(context.Background(), models.ProfileInput{FirstName: "Asha B"})
	assert.EqualError(t, err, "Failed to update profile")
	assert.True(t, sf.Session.IsAuthenticated())
	assert.Equal(t, 2, store.Len())
}

func TestUpdateProfile_UnauthorizedSignsOut(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("PUT /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Session expired, please login again"})
	})
	sf, store := newStorefront(t, f)
	signIn(t, sf, shopper)

	_, err := sf.Auth.UpdateProfile(context.Background(), models.ProfileInput{LastName: "B"})
	assert.EqualError(t, err, "Session expired, please login again")
	assert.False(t, sf.Session.IsAuthenticated())
	assert.Zero(t, store.Len())
}

func TestUpdateProfile_Success(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("PUT /api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		var in models.ProfileInput
		decode(f.t, r, &in)
		u := shopper
		u.Phone = in.Phone
		writeJSON(w, 200, u)
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, shopper)

	u, err := sf.Auth.UpdateProfile(context.Background(), models.ProfileInput{Phone: "9123456780"})
	require.NoError(t, err)
	assert.Equal(t, "9123456780", u.Phone)

	stored, _ := sf.Session.User()
	assert.Equal(t, "9123456780", stored.Phone)
}

func TestLogout(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{items: []models.CartItem{{Product: rocket, Quantity: 1}}}).mount(f)
	sf, store := newStorefront(t, f)
	signIn(t, sf, shopper)
	require.False(t, sf.Cart.IsEmpty())

	require.NoError(t, sf.Auth.Logout(context.Background()))
	assert.False(t, sf.Session.IsAuthenticated())
	assert.Zero(t, store.Len())
	assert.True(t, sf.Cart.IsEmpty(), "logout empties the cart without a call")
	assert.Equal(t, 1, f.count("GET /api/cart"))
}
