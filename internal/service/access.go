package service

import (
	"context"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/repository"
)

// requireMember returns the caller's membership or NotAuthorized.
func requireMember(ctx context.Context, members repository.MembershipRepository, groupID, userID string) (*domain.Membership, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	m, err := members.Get(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewError(domain.KindNotAuthorized, "not a member of this group")
	}
	return m, nil
}

func requireAdmin(ctx context.Context, members repository.MembershipRepository, groupID, userID string) (*domain.Membership, error) {
	m, err := requireMember(ctx, members, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, domain.NewError(domain.KindNotAuthorized, "admin role required")
	}
	return m, nil
}
