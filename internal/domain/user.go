package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User is both an actor and a managed resource.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Role         Role
	Status       UserStatus
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the identity view of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Resource returns the authorization view. A user owns itself and is never assigned.
func (u *User) Resource() Resource {
	return Resource{
		Kind:   KindUser,
		ID:     u.ID,
		Owner:  u.Actor(),
		Status: string(u.Status),
	}
}
