package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // user, admin
	BandName     string    `json:"band_name"`
	Email        string    `json:"email"`
	Contact      string    `json:"contact"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor identifies who performs an operation. It is resolved from the
// session by the transport layer and passed explicitly; domain code never
// reads ambient login state.
type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Session is the server-side record behind a login token.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	BandName  string    `json:"band_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Actor() Actor {
	return Actor{ID: s.UserID, Role: s.Role}
}
