package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

const inviteTokenBytes = 32

type inviteService struct {
	memberRepo repository.MembershipRepository
	inviteRepo repository.InviteRepository
	clock      calendar.Clock
}

func NewInviteService(memberRepo repository.MembershipRepository, inviteRepo repository.InviteRepository, clock calendar.Clock) InviteService {
	return &inviteService{
		memberRepo: memberRepo,
		inviteRepo: inviteRepo,
		clock:      clock,
	}
}

func newInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *inviteService) CreateInvite(ctx context.Context, groupID, creatorID string, expiresInHours *int, maxUses int) (*domain.Invite, error) {
	logger.EnterMethod("inviteService.CreateInvite", "groupID", groupID, "creatorID", creatorID, "maxUses", maxUses)
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, creatorID); err != nil {
		logger.ExitMethodWithError("inviteService.CreateInvite", err)
		return nil, err
	}
	if expiresInHours != nil && *expiresInHours <= 0 {
		err := domain.NewError(domain.KindInvalidArgument, "expiry must be a positive number of hours")
		logger.ExitMethodWithError("inviteService.CreateInvite", err)
		return nil, err
	}
	if maxUses <= 0 {
		maxUses = domain.DefaultInviteMaxUses
	}

	token, err := newInviteToken()
	if err != nil {
		logger.ExitMethodWithError("inviteService.CreateInvite", err)
		return nil, domain.Transient(err)
	}
	inv := &domain.Invite{
		Token:     token,
		GroupID:   groupID,
		CreatedBy: creatorID,
		Active:    true,
		MaxUses:   maxUses,
	}
	if expiresInHours != nil {
		exp := s.clock().Add(time.Duration(*expiresInHours) * time.Hour)
		inv.ExpiresAt = &exp
	}
	if err := s.inviteRepo.Create(ctx, inv); err != nil {
		logger.ExitMethodWithError("inviteService.CreateInvite", err)
		return nil, err
	}
	logger.ExitMethod("inviteService.CreateInvite", "groupID", groupID)
	return inv, nil
}

func (s *inviteService) RedeemInvite(ctx context.Context, token, userID string) (string, error) {
	logger.EnterMethod("inviteService.RedeemInvite", "userID", userID)
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	if token == "" {
		return "", domain.ErrInvalidOrExpiredToken
	}
	inv, err := s.inviteRepo.Redeem(ctx, token, userID, s.clock())
	if err != nil {
		logger.ExitMethodWithError("inviteService.RedeemInvite", err, "userID", userID)
		return "", err
	}
	logger.ExitMethod("inviteService.RedeemInvite", "groupID", inv.GroupID, "uses", inv.Uses)
	return inv.GroupID, nil
}

func (s *inviteService) DeactivateInvite(ctx context.Context, groupID, adminID, token string) error {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return err
	}
	return s.inviteRepo.Deactivate(ctx, groupID, token)
}

func (s *inviteService) ListInvites(ctx context.Context, groupID, adminID string) ([]domain.Invite, error) {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return nil, err
	}
	return s.inviteRepo.ListByGroup(ctx, groupID)
}
