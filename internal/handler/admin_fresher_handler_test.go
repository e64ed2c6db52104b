package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fresher-training-api/internal/dto"
	"github.com/noah-isme/fresher-training-api/internal/handler"
	"github.com/noah-isme/fresher-training-api/internal/repository"
	"github.com/noah-isme/fresher-training-api/internal/service"
)

type fakeAvatarStorage struct {
	uploads int
}

func (f *fakeAvatarStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	f.uploads++
	_, err := io.Copy(io.Discard, reader)
	return "https://cdn.example.com/avatars/" + name, err
}

func newAdminApp(t *testing.T) (*fiber.App, *fakeAvatarStorage) {
	t.Helper()
	db := setupHandlerDB(t)
	validate := testValidator()
	feed := service.NewActivityService(repository.NewActivityRepository(db), validate, zerolog.Nop())
	storage := &fakeAvatarStorage{}
	freshers := service.NewAdminFresherService(
		repository.NewFresherRepository(db),
		repository.NewQuizAttemptRepository(db),
		feed,
		storage,
		nil,
		validate,
		"maverick.com",
		zerolog.Nop(),
	)

	app := fiber.New()
	admin := app.Group("/api/admin", asUser(1, "admin"))
	handler.NewAdminFresherHandler(freshers, zerolog.Nop()).Register(admin.Group("/freshers"))
	handler.NewAdminActivityHandler(feed, zerolog.Nop()).Register(admin.Group("/activities"))
	return app, storage
}

func createFresher(t *testing.T, app *fiber.App, payload map[string]interface{}) dto.FresherResponse {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/freshers", payload), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var fresher dto.FresherResponse
	require.NoError(t, json.Unmarshal(env.Data, &fresher))
	return fresher
}

func TestAdminFresherHandlerLifecycle(t *testing.T) {
	app, _ := newAdminApp(t)

	alice := createFresher(t, app, map[string]interface{}{"name": "Alice Johnson", "department": "Data Science", "batch": "2024-A"})
	require.Equal(t, "alice.johnson@maverick.com", alice.Email)
	createFresher(t, app, map[string]interface{}{"name": "Bob Smith", "department": "DevOps", "batch": "2024-A"})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/freshers", map[string]interface{}{"name": "Alice Johnson", "department": "QA"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/freshers?search=data&page=1&page_size=10", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	var items []dto.FresherResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	require.Equal(t, alice.ID, items[0].ID)
	var meta dto.PaginationMeta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, int64(1), meta.TotalItems)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/admin/freshers/1", map[string]interface{}{"status": "completed"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env = decodeEnvelope(t, resp)
	var updated dto.FresherResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "completed", updated.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/admin/freshers/2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/freshers/2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activities?page_size=2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env = decodeEnvelope(t, resp)
	var feed []dto.ActivityResponse
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 2)
	require.Equal(t, "fresher_removed", feed[0].Type)
	require.NotNil(t, feed[0].AdminID)
	require.Equal(t, uint(1), *feed[0].AdminID)
}

func TestAdminFresherHandlerValidation(t *testing.T) {
	app, _ := newAdminApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/freshers", map[string]interface{}{"name": "A"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	require.Contains(t, string(env.Details), "department")

	alice := createFresher(t, app, map[string]interface{}{"name": "Alice Johnson", "department": "Data Science"})
	resp, err = app.Test(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/admin/freshers/%d", alice.ID), map[string]interface{}{"name": "<b></b>"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	env = decodeEnvelope(t, resp)
	require.Contains(t, string(env.Details), "name")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/freshers/abc", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/freshers?page=x", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/activities?fresher_id=-3", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminFresherHandlerAvatarUpload(t *testing.T) {
	app, storage := newAdminApp(t)
	alice := createFresher(t, app, map[string]interface{}{"name": "Alice Johnson", "department": "Data Science"})

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
	upload := func(content []byte) *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/admin/freshers/1/avatar", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := upload(png)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	var updated dto.FresherResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, alice.ID, updated.ID)
	require.Contains(t, updated.AvatarURL, "https://cdn.example.com/avatars/")
	require.Equal(t, 1, storage.uploads)

	resp = upload([]byte("definitely not an image"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, 1, storage.uploads)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/freshers/1/avatar", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
