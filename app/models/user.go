package models

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Address is a postal address inside India; Pincode is the 6-digit PIN.
type Address struct {
	Street   string `gorm:"size:255" json:"street"`
	City     string `gorm:"size:100" json:"city"`
	State    string `gorm:"size:100" json:"state"`
	Pincode  string `gorm:"size:10"  json:"pincode"`
	Landmark string `gorm:"size:255" json:"landmark,omitempty"`
}

// User is a shopper or an admin. Password holds the bcrypt hash and is never
// serialised.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"           json:"_id"`
	FirstName string    `gorm:"size:100;not null"            json:"firstName"`
	LastName  string    `gorm:"size:100"                     json:"lastName"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone     string    `gorm:"size:20"                      json:"phone"`
	Role      string    `gorm:"size:20;default:user"         json:"role"`
	Address   Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Password  string    `gorm:"size:255;not null"            json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// AuthResponse is the body of /auth/login and /auth/register: the user's
// fields plus the bearer token, flattened into one object.
type AuthResponse struct {
	User
	Token string `json:"token"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	Phone     string `json:"phone"     validate:"nullable,digits=10"`
}

// ProfileInput is the body of PUT /users/profile. Empty fields are left
// unchanged; Address replaces the stored address when non-nil.
type ProfileInput struct {
	FirstName string   `json:"firstName,omitempty" validate:"max=100"`
	LastName  string   `json:"lastName,omitempty"  validate:"max=100"`
	Phone     string   `json:"phone,omitempty"     validate:"nullable,digits=10"`
	Address   *Address `json:"address,omitempty"`
}
