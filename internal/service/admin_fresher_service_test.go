package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/models"
	"github.com/noah-isme/fresher-training-api/internal/repository"
)

var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

type adminFresherFixture struct {
	svc      AdminFresherService
	freshers repository.FresherRepository
	attempts repository.QuizAttemptRepository
	storage  *memoryStorage
	feed     ActivityService
}

func newAdminFresherFixture(t *testing.T) adminFresherFixture {
	t.Helper()
	db := setupServiceDB(t)
	freshers := repository.NewFresherRepository(db)
	attempts := repository.NewQuizAttemptRepository(db)
	feed := NewActivityService(repository.NewActivityRepository(db), testValidator(), testLogger())
	storage := &memoryStorage{}
	svc := NewAdminFresherService(freshers, attempts, feed, storage, nil, testValidator(), "maverick.com", testLogger())
	return adminFresherFixture{svc: svc, freshers: freshers, attempts: attempts, storage: storage, feed: feed}
}

func TestGenerateFresherEmail(t *testing.T) {
	cases := map[string]string{
		"Alice Johnson":          "alice.johnson@maverick.com",
		"  bob   van der Berg  ": "bob.berg@maverick.com",
		"Cher":                   "cher@maverick.com",
		"O'Neil Smith-Jones":     "oneil.smithjones@maverick.com",
	}
	for name, expected := range cases {
		email, err := GenerateFresherEmail(name, "Maverick.com")
		require.NoError(t, err, name)
		require.Equal(t, expected, email)
	}

	_, err := GenerateFresherEmail("  !!  ", "maverick.com")
	require.ErrorIs(t, err, ErrInvalidFresherName)
}

func TestGenerateFresherCode(t *testing.T) {
	code := GenerateFresherCode(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Regexp(t, `^MAV-2024-[0-9A-F]{8}$`, code)
	require.NotEqual(t, code, GenerateFresherCode(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAdminFresherServiceCreateGeneratesEmailAndRecordsActivity(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, ActivityActor{ID: 9, Role: "admin"}, dto.FresherCreateRequest{
		Name:       "Alice <b>Johnson</b>",
		Department: "Data Science",
		Batch:      "2024-A",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Johnson", created.Name)
	require.Equal(t, "alice.johnson@maverick.com", created.Email)
	require.Equal(t, models.FresherStatusActive, created.Status)
	require.Regexp(t, `^MAV-\d{4}-`, created.Code)
	require.Zero(t, created.AttemptCount)

	feed, err := fx.feed.List(ctx, dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	require.Equal(t, models.ActivityFresherAdded, feed.Items[0].Type)
	require.NotNil(t, feed.Items[0].AdminID)
	require.Equal(t, uint(9), *feed.Items[0].AdminID)

	_, err = fx.svc.Create(ctx, ActivityActor{ID: 9}, dto.FresherCreateRequest{
		Name:       "Alice Johnson",
		Department: "DevOps",
	})
	require.ErrorIs(t, err, ErrFresherEmailTaken)
}

func TestAdminFresherServiceCreateValidatesPayload(t *testing.T) {
	fx := newAdminFresherFixture(t)

	_, err := fx.svc.Create(context.Background(), ActivityActor{}, dto.FresherCreateRequest{Name: "A"})
	require.Error(t, err)

	_, err = fx.svc.Create(context.Background(), ActivityActor{}, dto.FresherCreateRequest{
		Name:       "Valid Name",
		Department: "QA",
		Status:     "graduated",
	})
	require.Error(t, err)
}

func TestAdminFresherServiceUpdateRevalidatesSanitisedFields(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()

	alice, err := fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Alice Johnson", Department: "Data Science"})
	require.NoError(t, err)

	for _, req := range []dto.FresherUpdateRequest{
		{Name: ptrString("<b></b>")},
		{Name: ptrString("   ")},
		{Department: ptrString("<script>x</script>")},
		{Status: ptrString(" graduated ")},
	} {
		_, err := fx.svc.Update(ctx, ActivityActor{ID: 1}, alice.ID, req)
		require.Error(t, err)
	}

	stored, err := fx.svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Johnson", stored.Name)
	require.Equal(t, "Data Science", stored.Department)

	updated, err := fx.svc.Update(ctx, ActivityActor{ID: 1}, alice.ID, dto.FresherUpdateRequest{
		Name:   ptrString("  <i>Alice</i> Smith "),
		Status: ptrString(" Completed"),
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", updated.Name)
	require.Equal(t, models.FresherStatusCompleted, updated.Status)
}

func TestAdminFresherServiceListIncludesQuizStats(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()

	alice, err := fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Alice Johnson", Department: "Data Science"})
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Bob Smith", Department: "DevOps"})
	require.NoError(t, err)

	for _, attempt := range []models.QuizAttempt{
		{FresherID: alice.ID, SessionID: "s1", Score: 5, TotalQuestions: 5, Completed: true, QuizDate: time.Now()},
		{FresherID: alice.ID, SessionID: "s2", Score: 3, TotalQuestions: 5, Completed: true, QuizDate: time.Now()},
	} {
		attempt := attempt
		require.NoError(t, fx.attempts.Create(ctx, &attempt))
	}

	list, err := fx.svc.List(ctx, dto.FresherListRequest{Page: 1, PageSize: 10, Sort: "name"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.Equal(t, int64(2), list.Pagination.TotalItems)
	require.Equal(t, "Alice Johnson", list.Items[0].Name)
	require.InDelta(t, 4.0, list.Items[0].QuizAverage, 1e-9)
	require.Equal(t, 2, list.Items[0].AttemptCount)
	require.Zero(t, list.Items[1].AttemptCount)

	filtered, err := fx.svc.List(ctx, dto.FresherListRequest{Search: "devops"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, "Bob Smith", filtered.Items[0].Name)
}

func TestAdminFresherServiceUpdateAndDelete(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()

	alice, err := fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Alice Johnson", Department: "Data Science"})
	require.NoError(t, err)
	bob, err := fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Bob Smith", Department: "DevOps"})
	require.NoError(t, err)

	updated, err := fx.svc.Update(ctx, ActivityActor{ID: 1}, alice.ID, dto.FresherUpdateRequest{
		Department: ptrString("Machine Learning"),
		Status:     ptrString("inactive"),
	})
	require.NoError(t, err)
	require.Equal(t, "Machine Learning", updated.Department)
	require.Equal(t, models.FresherStatusInactive, updated.Status)

	_, err = fx.svc.Update(ctx, ActivityActor{ID: 1}, alice.ID, dto.FresherUpdateRequest{Email: ptrString(bob.Email)})
	require.ErrorIs(t, err, ErrFresherEmailTaken)

	_, err = fx.svc.Update(ctx, ActivityActor{ID: 1}, 999, dto.FresherUpdateRequest{Batch: ptrString("B")})
	require.ErrorIs(t, err, ErrFresherNotFound)

	require.NoError(t, fx.svc.Delete(ctx, ActivityActor{ID: 1}, bob.ID))
	_, err = fx.svc.Get(ctx, bob.ID)
	require.ErrorIs(t, err, ErrFresherNotFound)
	require.ErrorIs(t, fx.svc.Delete(ctx, ActivityActor{ID: 1}, bob.ID), ErrFresherNotFound)

	feed, err := fx.feed.List(ctx, dto.ActivityListRequest{Type: models.ActivityFresherRemoved})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
}

func TestAdminFresherServiceUploadAvatar(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()

	alice, err := fx.svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Alice Johnson", Department: "Data Science"})
	require.NoError(t, err)

	resp, err := fx.svc.UploadAvatar(ctx, ActivityActor{ID: 2}, alice.ID, buildFileHeader(t, "avatar.png", pngHeader))
	require.NoError(t, err)
	require.Contains(t, resp.AvatarURL, "https://cdn.example.com/")
	require.Len(t, fx.storage.names, 1)
	require.Contains(t, fx.storage.names[0], "-avatar.png")
	require.Equal(t, pngHeader, fx.storage.payload)

	_, err = fx.svc.UploadAvatar(ctx, ActivityActor{ID: 2}, alice.ID, buildFileHeader(t, "avatar.png", []byte("plain text pretending to be an image")))
	require.ErrorIs(t, err, ErrAvatarTypeNotAllowed)

	_, err = fx.svc.UploadAvatar(ctx, ActivityActor{ID: 2}, alice.ID, nil)
	require.ErrorIs(t, err, ErrAvatarRequired)

	_, err = fx.svc.UploadAvatar(ctx, ActivityActor{ID: 2}, 404, buildFileHeader(t, "avatar.png", pngHeader))
	require.ErrorIs(t, err, ErrFresherNotFound)
}

func TestAdminFresherServiceUploadAvatarWithoutStorage(t *testing.T) {
	fx := newAdminFresherFixture(t)
	ctx := context.Background()
	svc := NewAdminFresherService(fx.freshers, fx.attempts, fx.feed, nil, nil, testValidator(), "maverick.com", testLogger())

	alice, err := svc.Create(ctx, ActivityActor{}, dto.FresherCreateRequest{Name: "Alice Johnson", Department: "Data Science"})
	require.NoError(t, err)

	_, err = svc.UploadAvatar(ctx, ActivityActor{ID: 2}, alice.ID, buildFileHeader(t, "avatar.png", pngHeader))
	require.ErrorIs(t, err, ErrAvatarStorageUnavailable)
}
