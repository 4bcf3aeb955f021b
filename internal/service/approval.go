package service

import (
	"context"
	"strings"

	"gymcrew-backend/internal/calendar"
	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
)

type approvalService struct {
	memberRepo  repository.MembershipRepository
	checkInRepo repository.CheckInRepository
	clock       calendar.Clock
}

func NewApprovalService(memberRepo repository.MembershipRepository, checkInRepo repository.CheckInRepository, clock calendar.Clock) ApprovalService {
	return &approvalService{
		memberRepo:  memberRepo,
		checkInRepo: checkInRepo,
		clock:       clock,
	}
}

func (s *approvalService) Approve(ctx context.Context, groupID, checkInID, approverID string) error {
	logger.EnterMethod("approvalService.Approve", "groupID", groupID, "checkInID", checkInID, "approverID", approverID)

	// Non-members get NotAuthorized whether or not the id exists.
	if _, err := requireMember(ctx, s.memberRepo, groupID, approverID); err != nil {
		logger.ExitMethodWithError("approvalService.Approve", err)
		return err
	}
	// Out-of-group ids resolve as CheckInNotFound.
	c, err := s.checkInRepo.GetByID(ctx, groupID, checkInID)
	if err != nil {
		logger.ExitMethodWithError("approvalService.Approve", err)
		return err
	}
	if c.UserID == approverID {
		logger.ExitMethodWithError("approvalService.Approve", domain.ErrCannotSelfApprove)
		return domain.ErrCannotSelfApprove
	}
	if !c.IsPendingManual() {
		logger.ExitMethodWithError("approvalService.Approve", domain.ErrNotPendingManual, "status", c.Status)
		return domain.ErrNotPendingManual
	}

	// A concurrent decision surfaces here as NotPendingManual.
	if err := s.checkInRepo.Approve(ctx, groupID, checkInID, approverID, s.clock()); err != nil {
		logger.ExitMethodWithError("approvalService.Approve", err)
		return err
	}
	logger.ExitMethod("approvalService.Approve", "checkInID", checkInID)
	return nil
}

func (s *approvalService) Reject(ctx context.Context, groupID, checkInID, adminID, reason string) error {
	logger.EnterMethod("approvalService.Reject", "groupID", groupID, "checkInID", checkInID, "adminID", adminID)

	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		logger.ExitMethodWithError("approvalService.Reject", err)
		return err
	}
	c, err := s.checkInRepo.GetByID(ctx, groupID, checkInID)
	if err != nil {
		logger.ExitMethodWithError("approvalService.Reject", err)
		return err
	}
	if !c.IsPendingManual() {
		logger.ExitMethodWithError("approvalService.Reject", domain.ErrNotPendingManual, "status", c.Status)
		return domain.ErrNotPendingManual
	}

	if err := s.checkInRepo.Reject(ctx, groupID, checkInID, strings.TrimSpace(reason)); err != nil {
		logger.ExitMethodWithError("approvalService.Reject", err)
		return err
	}
	logger.ExitMethod("approvalService.Reject", "checkInID", checkInID)
	return nil
}

func (s *approvalService) ListPending(ctx context.Context, groupID, viewerID string) ([]domain.CheckIn, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.checkInRepo.ListPendingManual(ctx, groupID)
}
