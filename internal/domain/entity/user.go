package entity

import (
	"time"
)

// User is the aggregate root for the directory domain.
//
// DateOfBirth is kept as the client-supplied YYYY-MM-DD text; the store
// persists it verbatim and the application layer derives age from it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	DateOfBirth  string    `json:"date_of_birth"`
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// FollowEdge is a directed relationship: FollowerID follows FollowingID.
// At most one edge exists per ordered pair.
type FollowEdge struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
