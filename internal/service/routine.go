package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gymcrew-backend/internal/domain"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/repository"
	"gymcrew-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	routineUploadTTL   = 15 * time.Minute
	routineDownloadTTL = time.Hour
)

// routineTypes maps the accepted document content types to file extensions.
var routineTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
}

// IsRoutineContentType reports whether contentType may be stored as a routine.
func IsRoutineContentType(contentType string) bool {
	_, ok := routineTypes[contentType]
	return ok
}

type routineService struct {
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	blobs      storage.BlobStore
}

func NewRoutineService(groupRepo repository.GroupRepository, memberRepo repository.MembershipRepository, blobs storage.BlobStore) RoutineService {
	return &routineService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		blobs:      blobs,
	}
}

func routinePrefix(groupID string) string {
	return "routines/" + groupID + "/"
}

func (s *routineService) UploadURL(ctx context.Context, groupID, adminID, contentType string) (*RoutineUpload, error) {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return nil, err
	}
	ext, ok := routineTypes[contentType]
	if !ok {
		return nil, domain.NewError(domain.KindInvalidArgument, fmt.Sprintf("unsupported content type %q", contentType))
	}

	key := routinePrefix(groupID) + uuid.NewString() + ext
	url, err := s.blobs.PresignUpload(ctx, key, contentType, routineUploadTTL)
	logger.ExternalServiceResult("storage", "PresignUpload", err, "key", key)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return &RoutineUpload{Key: key, URL: url, ExpiresAt: time.Now().Add(routineUploadTTL)}, nil
}

// SetRoutine points the group at an uploaded document and drops the previous one.
func (s *routineService) SetRoutine(ctx context.Context, groupID, adminID, key, contentType string) error {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return err
	}
	if _, ok := routineTypes[contentType]; !ok {
		return domain.NewError(domain.KindInvalidArgument, fmt.Sprintf("unsupported content type %q", contentType))
	}
	if !strings.HasPrefix(key, routinePrefix(groupID)) {
		return domain.NewError(domain.KindInvalidArgument, "document does not belong to this group")
	}
	exists, _, err := s.blobs.Exists(ctx, key)
	logger.ExternalServiceResult("storage", "Exists", err, "key", key)
	if err != nil {
		return domain.Transient(err)
	}
	if !exists {
		return domain.NewError(domain.KindInvalidArgument, "document has not been uploaded")
	}

	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groupRepo.UpdateRoutine(ctx, groupID, &key, &contentType); err != nil {
		return err
	}
	if g.RoutinePath != nil && *g.RoutinePath != key {
		s.deleteBlob(ctx, *g.RoutinePath)
	}
	return nil
}

func (s *routineService) ClearRoutine(ctx context.Context, groupID, adminID string) error {
	if _, err := requireAdmin(ctx, s.memberRepo, groupID, adminID); err != nil {
		return err
	}
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groupRepo.UpdateRoutine(ctx, groupID, nil, nil); err != nil {
		return err
	}
	if g.RoutinePath != nil {
		s.deleteBlob(ctx, *g.RoutinePath)
	}
	return nil
}

func (s *routineService) DownloadURL(ctx context.Context, groupID, viewerID string) (string, error) {
	if _, err := requireMember(ctx, s.memberRepo, groupID, viewerID); err != nil {
		return "", err
	}
	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	return routineURL(ctx, s.blobs, g), nil
}

// deleteBlob is best effort; an orphaned document is harmless.
func (s *routineService) deleteBlob(ctx context.Context, key string) {
	err := s.blobs.Delete(ctx, key)
	logger.ExternalServiceResult("storage", "Delete", err, "key", key)
}

// routineURL signs a download link for the group's routine. Storage failures
// yield an empty link.
func routineURL(ctx context.Context, blobs storage.BlobStore, g *domain.Group) string {
	if g.RoutinePath == nil || blobs == nil {
		return ""
	}
	url, err := blobs.PresignDownload(ctx, *g.RoutinePath, routineDownloadTTL)
	logger.ExternalServiceResult("storage", "PresignDownload", err, "key", *g.RoutinePath)
	if err != nil {
		return ""
	}
	return url
}
