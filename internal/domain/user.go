package domain

import (
	"fmt"
	"strings"
	"time"
)

// User employee or admin account (corresponds to users table).
// The numeric chat id (TgID) is the external identity; profile fields are
// collected step by step during registration and stay NULL until provided.
type User struct {
	ID   int64
	TgID int64

	FirstName *string
	LastName  *string
	Position  *string
	City      *string
	Phone     *string
	Leader    *string

	IsAdmin bool

	IsWorking     bool
	WorkStartedAt *time.Time

	CreatedAt time.Time
}

// Registered reports whether every profile field is filled in.
// Unregistered users may not start any workflow.
func (u *User) Registered() bool {
	return deref(u.FirstName) != "" &&
		deref(u.LastName) != "" &&
		deref(u.Position) != "" &&
		deref(u.City) != "" &&
		deref(u.Phone) != "" &&
		deref(u.Leader) != ""
}

// DisplayName full name, falling back to the chat id for half-filled profiles.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if full == "" {
		return fmt.Sprintf("tg:%d", u.TgID)
	}
	return full
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
