package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation and conflict errors map to 400/409 responses; the handler picks
// the status with StatusForError.
var (
	ErrInvalidUsername  = errors.New("username must be 3-15 characters of letters, numbers and underscores")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrUsernameTaken    = errors.New("that username already exists")
	ErrEmailTaken       = errors.New("that email is already registered")
	ErrMissingName      = errors.New("first and last name are required")
	ErrMissingCountry   = errors.New("country is required")
	ErrWeakPassword     = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTermsNotAccepted = errors.New("you must accept the terms and conditions")
	ErrInvalidStep      = errors.New("invalid registration step")

	// ErrUnauthenticated deliberately covers both "no such user" and "wrong
	// password" so login failures cannot be used to enumerate accounts.
	ErrUnauthenticated = errors.New("invalid credentials")
)

// StatusForError translates a domain error into an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		return 409
	case errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrMissingName), errors.Is(err, ErrMissingCountry),
		errors.Is(err, ErrWeakPassword), errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrTermsNotAccepted), errors.Is(err, ErrInvalidStep):
		return 400
	case errors.Is(err, ErrUnauthenticated):
		return 401
	default:
		return 500
	}
}

// Role and status enums, matching the users table constraints.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"

	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusSuspended = "Suspended"
)

// User is the durable identity record held in the users table.
type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"`
	Level         int        `json:"level"`
	XP            int        `json:"xp"`
	Status        string     `json:"status"`
	SummonerName  *string    `json:"summoner_name"`
	Tag           *string    `json:"tag"`
	PromosOptIn   bool       `json:"promos_opt_in"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Claims is the identity snapshot embedded in a session token. It is taken at
// login and never re-fetched until the user authenticates again.
type Claims struct {
	UserID       int64   `json:"user_id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Level        int     `json:"level"`
	XP           int     `json:"xp"`
	Status       string  `json:"status"`
	SummonerName *string `json:"summoner_name"`
	Tag          *string `json:"tag"`
	jwt.RegisteredClaims
}

// RegisterRequest is the step-dispatched registration body. The client holds
// the full draft and resends every field on step 3.
type RegisterRequest struct {
	Step            int    `json:"step"`
	Username        string `json:"username,omitempty"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Country         string `json:"country,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Promos          bool   `json:"promos,omitempty"`
	Terms           bool   `json:"terms,omitempty"`
}

// RegisterResponse is returned by every registration step; UserID is only set
// when step 3 commits.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId,omitempty"`
}

// LoginRequest accepts either a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// SessionView is the request-scoped session echoed back to the client. Values
// come verbatim from the token claims, not from the store.
type SessionView struct {
	UserID       int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Level        int     `json:"level"`
	XP           int     `json:"xp"`
	Status       string  `json:"status"`
	SummonerName *string `json:"summoner_name"`
	Tag          *string `json:"tag"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
