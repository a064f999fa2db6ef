package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// IdentityResolver turns the user id claim of a request into a Caller.
type IdentityResolver struct {
	users UserStore
}

func NewIdentityResolver(users UserStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve fails with an unauthorized error when the claim is missing or
// malformed, or when the user no longer exists.
func (r *IdentityResolver) Resolve(ctx context.Context, rawUserID string) (Caller, error) {
	rawUserID = strings.TrimSpace(rawUserID)
	if rawUserID == "" {
		return Caller{}, unauthorized("missing user id claim")
	}

	userID, err := strconv.Atoi(rawUserID)
	if err != nil {
		return Caller{}, unauthorized("invalid user id claim")
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Caller{}, unauthorized("user not found")
		}
		return Caller{}, unexpected("failed to load user", err)
	}

	return Caller{
		UserID:         user.ID,
		RoleID:         user.RoleID,
		OrganizationID: user.OrganizationID,
	}, nil
}
