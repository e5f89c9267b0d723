package domain

import (
	"context"
	"errors"
)

// User is the authenticated caller, taken from a verified token.
type User struct {
	ID              string
	Email           string
	Role            Role
	BoardingHouseID string
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin is a branch admin: manages accounts, issues cash, decides requests
	RoleAdmin Role = "admin"

	// RoleCustodian holds the cash box: records expenses, submits and confirms requests
	RoleCustodian Role = "custodian"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleCustodian: true,
	RoleViewer:    true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanSpend checks if the role can record expenses and submit requests
func (r Role) CanSpend() bool {
	return r == RoleAdmin || r == RoleCustodian
}

// CanManageAccounts checks if the role can create accounts and issue cash
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// CanDecide checks if the role can approve or reject requests
func (r Role) CanDecide() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// ContextWithUser returns a copy of ctx carrying user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// ActorID returns the acting user's ID, or "system" for unauthenticated calls.
func ActorID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.ID
	}
	return "system"
}

type boardingHouseKey struct{}

// ContextWithBoardingHouse scopes ctx to one boarding house.
func ContextWithBoardingHouse(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, boardingHouseKey{}, id)
}

// BoardingHouseFromContext returns the boarding house scope, or "" when unscoped.
func BoardingHouseFromContext(ctx context.Context) string {
	id, _ := ctx.Value(boardingHouseKey{}).(string)
	return id
}
