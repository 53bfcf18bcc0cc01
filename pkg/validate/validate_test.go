package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sparkcrackers/storefront/pkg/validate"
)

type signupInput struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	Phone     string `json:"phone"     validate:"nullable,digits=10"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Password:  "secret1",
	})
	assert.False(t, validate.HasErrors(errs), "got %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&signupInput{})
	assert.Equal(t, "The firstName field is required.", errs["firstName"])
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "phone", "nullable field skipped when empty")
}

func TestFirstFailingRuleWins(t *testing.T) {
	errs := validate.Struct(signupInput{FirstName: "A", Email: "bad", Password: "123"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
}

func TestDigits(t *testing.T) {
	errs := validate.Struct(signupInput{FirstName: "A", Email: "a@b.io", Password: "secret1", Phone: "98765"})
	assert.Equal(t, "The phone must be 10 digits.", errs["phone"])

	errs = validate.Struct(signupInput{FirstName: "A", Email: "a@b.io", Password: "secret1", Phone: "98765abcde"})
	assert.Contains(t, errs, "phone")

	errs = validate.Struct(signupInput{FirstName: "A", Email: "a@b.io", Password: "secret1", Phone: "9876543210"})
	assert.Empty(t, errs)
}

func TestNumericBounds(t *testing.T) {
	type line struct {
		Quantity int     `json:"quantity" validate:"required,gte=1,lte=99"`
		Price    float64 `json:"price"    validate:"gt=0"`
	}
	assert.Contains(t, validate.Struct(line{Quantity: 0, Price: 1}), "quantity")
	assert.Contains(t, validate.Struct(line{Quantity: 100, Price: 1}), "quantity")
	assert.Contains(t, validate.Struct(line{Quantity: 2, Price: 0}), "price")
	assert.Empty(t, validate.Struct(line{Quantity: 2, Price: 10.5}))
}

func TestInRule(t *testing.T) {
	type in struct {
		Method string `json:"paymentMethod" validate:"required,in=card upi cod"`
	}
	assert.Empty(t, validate.Struct(in{Method: "cod"}))
	assert.Equal(t, "The selected paymentMethod is invalid.", validate.Struct(in{Method: "cash"})["paymentMethod"])
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", validate.Value("image", "https://cdn.test/a.png", "url"))
	assert.NotEqual(t, "", validate.Value("image", "ftp://x", "url"))
	assert.NotEqual(t, "", validate.Value("amount", "abc", "numeric"))
}

func TestNonStructIsValid(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
}
