package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/fresher-training-api/internal/analytics"
	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

const maxAvatarBytes int64 = 2 * 1024 * 1024

var (
	// ErrFresherEmailTaken indicates another fresher already uses the email.
	ErrFresherEmailTaken = errors.New("fresher email already registered")
	// ErrInvalidFresherName indicates the name cannot produce an email address.
	ErrInvalidFresherName = errors.New("fresher name must contain letters")
	// ErrAvatarRequired indicates the upload carried no file.
	ErrAvatarRequired = errors.New("avatar file is required")
	// ErrAvatarTooLarge indicates the avatar exceeded the size limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum allowed size")
	// ErrAvatarTypeNotAllowed indicates the avatar is not a supported image.
	ErrAvatarTypeNotAllowed = errors.New("avatar must be a jpeg, png or webp image")
	// ErrAvatarStorageUnavailable indicates no upload destination is configured.
	ErrAvatarStorageUnavailable = errors.New("avatar storage is not configured")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AdminFresherService exposes fresher management for administrators.
type AdminFresherService interface {
	List(ctx context.Context, req dto.FresherListRequest) (dto.FresherListResponse, error)
	Get(ctx context.Context, id uint) (dto.FresherResponse, error)
	Create(ctx context.Context, actor ActivityActor, req dto.FresherCreateRequest) (dto.FresherResponse, error)
	Update(ctx context.Context, actor ActivityActor, id uint, req dto.FresherUpdateRequest) (dto.FresherResponse, error)
	Delete(ctx context.Context, actor ActivityActor, id uint) error
	UploadAvatar(ctx context.Context, actor ActivityActor, id uint, file *multipart.FileHeader) (dto.FresherResponse, error)
}

type adminFresherService struct {
	freshers    repository.FresherRepository
	attempts    repository.QuizAttemptRepository
	activities  ActivityRecorder
	storage     FileStorage
	cache       *redis.Client
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	emailDomain string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAdminFresherService constructs the admin fresher service.
func NewAdminFresherService(freshers repository.FresherRepository, attempts repository.QuizAttemptRepository, activities ActivityRecorder, storage FileStorage, cache *redis.Client, validate *validator.Validate, emailDomain string, logger zerolog.Logger) AdminFresherService {
	if emailDomain == "" {
		emailDomain = "maverick.com"
	}
	return &adminFresherService{
		freshers:    freshers,
		attempts:    attempts,
		activities:  activities,
		storage:     storage,
		cache:       cache,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		emailDomain: emailDomain,
		logger:      logger.With().Str("component", "admin_fresher_service").Logger(),
		now:         time.Now,
	}
}

func (s *adminFresherService) List(ctx context.Context, req dto.FresherListRequest) (dto.FresherListResponse, error) {
	filter := repository.FresherFilter{
		Search:     strings.TrimSpace(req.Search),
		Department: strings.TrimSpace(req.Department),
		Batch:      strings.TrimSpace(req.Batch),
		Status:     strings.ToLower(strings.TrimSpace(req.Status)),
		Sort:       req.Sort,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	freshers, total, err := s.freshers.List(ctx, filter)
	if err != nil {
		return dto.FresherListResponse{}, err
	}

	ids := make([]uint, 0, len(freshers))
	for _, fresher := range freshers {
		ids = append(ids, fresher.ID)
	}

	attempts, err := s.attempts.ListByFreshers(ctx, ids)
	if err != nil {
		return dto.FresherListResponse{}, err
	}
	stats := analytics.AggregateByFresher(toAnalyticsAttempts(attempts))

	items := make([]dto.FresherResponse, 0, len(freshers))
	for _, fresher := range freshers {
		fresherStats, ok := stats[fresher.ID]
		if !ok {
			fresherStats = analytics.Aggregate(nil)
		}
		items = append(items, dto.NewFresherResponse(fresher, fresherStats))
	}

	pagination := dto.NewPaginationMeta(maxInt(req.Page, 1), req.PageSize, total)
	if req.PageSize <= 0 {
		pagination.TotalPages = 1
	}

	return dto.FresherListResponse{Items: items, Pagination: pagination}, nil
}

func (s *adminFresherService) Get(ctx context.Context, id uint) (dto.FresherResponse, error) {
	fresher, err := s.freshers.GetByID(ctx, id)
	if err != nil {
		return dto.FresherResponse{}, mapFresherError(err)
	}

	return s.withStats(ctx, fresher)
}

func (s *adminFresherService) Create(ctx context.Context, actor ActivityActor, req dto.FresherCreateRequest) (dto.FresherResponse, error) {
	req.Name = s.clean(req.Name)
	req.Department = s.clean(req.Department)
	req.Batch = s.clean(req.Batch)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.FresherResponse{}, err
	}

	if req.Email == "" {
		email, err := GenerateFresherEmail(req.Name, s.emailDomain)
		if err != nil {
			return dto.FresherResponse{}, err
		}
		req.Email = email
	}

	taken, err := s.freshers.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return dto.FresherResponse{}, err
	}
	if taken {
		return dto.FresherResponse{}, ErrFresherEmailTaken
	}

	now := s.now().UTC()
	enrolled := now
	if req.EnrollmentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EnrollmentDate)
		if err != nil {
			return dto.FresherResponse{}, err
		}
		enrolled = parsed
	}

	status := req.Status
	if status == "" {
		status = models.FresherStatusActive
	}

	fresher := models.Fresher{
		UserID:         req.UserID,
		Code:           GenerateFresherCode(now),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Department:     req.Department,
		Batch:          req.Batch,
		Status:         status,
		EnrollmentDate: enrolled,
	}

	if err := s.freshers.Create(ctx, &fresher); err != nil {
		return dto.FresherResponse{}, err
	}

	fresherID := fresher.ID
	recordActivity(ctx, s.activities, s.logger, dto.ActivityCreateRequest{
		Type:        models.ActivityFresherAdded,
		Description: fmt.Sprintf("New fresher %s added to %s", fresher.Name, fresher.Department),
		AdminID:     actorID(actor),
		FresherID:   &fresherID,
		Metadata:    map[string]interface{}{"code": fresher.Code, "department": fresher.Department},
	})
	s.invalidate(ctx, fresher.ID)

	return dto.NewFresherResponse(fresher, analytics.Aggregate(nil)), nil
}

func (s *adminFresherService) Update(ctx context.Context, actor ActivityActor, id uint, req dto.FresherUpdateRequest) (dto.FresherResponse, error) {
	req.Name = s.cleanPtr(req.Name)
	req.Department = s.cleanPtr(req.Department)
	req.Batch = s.cleanPtr(req.Batch)
	req.Phone = trimPtr(req.Phone)
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		req.Status = &status
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.FresherResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		taken, err := s.freshers.EmailTaken(ctx, *req.Email, id)
		if err != nil {
			return dto.FresherResponse{}, err
		}
		if taken {
			return dto.FresherResponse{}, ErrFresherEmailTaken
		}
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Batch != nil {
		updates["batch"] = *req.Batch
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	fresher, err := s.freshers.Update(ctx, id, updates)
	if err != nil {
		return dto.FresherResponse{}, mapFresherError(err)
	}

	fields := make([]string, 0, len(updates))
	for key := range updates {
		fields = append(fields, key)
	}

	fresherID := fresher.ID
	recordActivity(ctx, s.activities, s.logger, dto.ActivityCreateRequest{
		Type:        models.ActivityFresherUpdated,
		Description: fmt.Sprintf("Fresher %s profile updated", fresher.Name),
		AdminID:     actorID(actor),
		FresherID:   &fresherID,
		Metadata:    map[string]interface{}{"fields": fields},
	})
	s.invalidate(ctx, fresher.ID)

	return s.withStats(ctx, fresher)
}

func (s *adminFresherService) Delete(ctx context.Context, actor ActivityActor, id uint) error {
	fresher, err := s.freshers.GetByID(ctx, id)
	if err != nil {
		return mapFresherError(err)
	}

	if err := s.freshers.SoftDelete(ctx, id); err != nil {
		return mapFresherError(err)
	}

	fresherID := fresher.ID
	recordActivity(ctx, s.activities, s.logger, dto.ActivityCreateRequest{
		Type:        models.ActivityFresherRemoved,
		Description: fmt.Sprintf("Fresher %s removed from the programme", fresher.Name),
		AdminID:     actorID(actor),
		FresherID:   &fresherID,
		Metadata:    map[string]interface{}{"code": fresher.Code},
	})
	s.invalidate(ctx, fresher.ID)

	return nil
}

func (s *adminFresherService) UploadAvatar(ctx context.Context, actor ActivityActor, id uint, file *multipart.FileHeader) (dto.FresherResponse, error) {
	if file == nil {
		return dto.FresherResponse{}, ErrAvatarRequired
	}
	if s.storage == nil {
		return dto.FresherResponse{}, ErrAvatarStorageUnavailable
	}
	if file.Size > maxAvatarBytes {
		return dto.FresherResponse{}, ErrAvatarTooLarge
	}

	fresher, err := s.freshers.GetByID(ctx, id)
	if err != nil {
		return dto.FresherResponse{}, mapFresherError(err)
	}

	handle, err := file.Open()
	if err != nil {
		return dto.FresherResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxAvatarBytes+1)); err != nil {
		return dto.FresherResponse{}, err
	}
	if int64(buf.Len()) > maxAvatarBytes {
		return dto.FresherResponse{}, ErrAvatarTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !mime.Is("image/jpeg") && !mime.Is("image/png") && !mime.Is("image/webp") {
		return dto.FresherResponse{}, ErrAvatarTypeNotAllowed
	}

	name := fmt.Sprintf("%s-avatar%s", strings.ToLower(fresher.Code), mime.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.FresherResponse{}, err
	}

	updated, err := s.freshers.Update(ctx, id, map[string]interface{}{"avatar_url": url})
	if err != nil {
		return dto.FresherResponse{}, mapFresherError(err)
	}

	fresherID := updated.ID
	recordActivity(ctx, s.activities, s.logger, dto.ActivityCreateRequest{
		Type:        models.ActivityFresherUpdated,
		Description: fmt.Sprintf("Fresher %s avatar updated", updated.Name),
		AdminID:     actorID(actor),
		FresherID:   &fresherID,
		Metadata:    map[string]interface{}{"fields": []string{"avatar_url"}, "mime": mime.String()},
	})
	s.invalidate(ctx, updated.ID)

	return s.withStats(ctx, updated)
}

func (s *adminFresherService) withStats(ctx context.Context, fresher models.Fresher) (dto.FresherResponse, error) {
	attempts, err := s.attempts.ListByFresher(ctx, fresher.ID, 0)
	if err != nil {
		return dto.FresherResponse{}, err
	}
	return dto.NewFresherResponse(fresher, analytics.Aggregate(toAnalyticsAttempts(attempts))), nil
}

func (s *adminFresherService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *adminFresherService) cleanPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := s.clean(*value)
	return &cleaned
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func (s *adminFresherService) invalidate(ctx context.Context, fresherID uint) {
	invalidateCache(ctx, s.cache, s.logger, fresherDashboardCacheKey(fresherID), analyticsSummaryCacheKey)
}

// GenerateFresherEmail builds first.last@domain from a display name. Single names produce name@domain.
func GenerateFresherEmail(name, domain string) (string, error) {
	parts := make([]string, 0, 2)
	for _, field := range strings.Fields(name) {
		local := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return unicode.ToLower(r)
			}
			return -1
		}, field)
		if local != "" {
			parts = append(parts, local)
		}
	}

	if len(parts) == 0 {
		return "", ErrInvalidFresherName
	}

	local := parts[0]
	if len(parts) > 1 {
		local = parts[0] + "." + parts[len(parts)-1]
	}

	return fmt.Sprintf("%s@%s", local, strings.ToLower(strings.TrimSpace(domain))), nil
}

// GenerateFresherCode returns an enrolment code such as MAV-2024-1A2B3C4D.
func GenerateFresherCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MAV-%d-%s", now.Year(), suffix)
}

func mapFresherError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFresherNotFound
	}
	return err
}

func actorID(actor ActivityActor) *uint {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}
