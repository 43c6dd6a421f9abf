package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/handler"
	"github.com/noah-isme/gema-events-api/internal/repository"
	"github.com/noah-isme/gema-events-api/internal/service"
)

type mockParticipantService struct {
	lastActor  audit.Actor
	lastCreate dto.ParticipantCreateRequest
	created    bool
	calls      []string
	err        error
}

func (m *mockParticipantService) ShowAll(_ context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error) {
	m.calls = append(m.calls, "showAll")
	m.lastActor = actor
	return []dto.ParticipantResponse{}, m.err
}

func (m *mockParticipantService) Show(_ context.Context, actor audit.Actor, _ uint) (dto.ParticipantResponse, error) {
	m.calls = append(m.calls, "show")
	m.lastActor = actor
	return dto.ParticipantResponse{}, m.err
}

func (m *mockParticipantService) Trashed(_ context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error) {
	m.calls = append(m.calls, "trashed")
	m.lastActor = actor
	return nil, m.err
}

func (m *mockParticipantService) Create(_ context.Context, actor audit.Actor, payload dto.ParticipantCreateRequest) (dto.ParticipantResponse, bool, error) {
	m.calls = append(m.calls, "create")
	m.lastActor = actor
	m.lastCreate = payload
	return dto.ParticipantResponse{RecordMeta: dto.RecordMeta{ID: 5}, LastName: payload.LastName}, m.created, m.err
}

func (m *mockParticipantService) Update(_ context.Context, actor audit.Actor, _ uint, _ dto.ParticipantUpdateRequest) (dto.ParticipantResponse, error) {
	m.calls = append(m.calls, "update")
	m.lastActor = actor
	return dto.ParticipantResponse{}, m.err
}

func (m *mockParticipantService) Delete(_ context.Context, actor audit.Actor, _ uint) error {
	m.calls = append(m.calls, "delete")
	m.lastActor = actor
	return m.err
}

func (m *mockParticipantService) ForceDestroy(_ context.Context, actor audit.Actor, _ uint) error {
	m.calls = append(m.calls, "forceDestroy")
	m.lastActor = actor
	return m.err
}

func (m *mockParticipantService) Restore(_ context.Context, actor audit.Actor, _ uint) (dto.ParticipantResponse, error) {
	m.calls = append(m.calls, "restore")
	m.lastActor = actor
	return dto.ParticipantResponse{}, m.err
}

func newParticipantApp(svc service.ParticipantService) *fiber.App {
	app := newTestApp(3, "admin")
	handler.NewParticipantHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/participants"))
	return app
}

func participantPayload() map[string]interface{} {
	return map[string]interface{}{
		"last_name":  "Reyes",
		"first_name": "Ana",
		"sex":        "F",
		"mobile":     "09171234567",
	}
}

func TestParticipantHandlerCreateReturnsCreated(t *testing.T) {
	svc := &mockParticipantService{created: true}
	app := newParticipantApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/participants", participantPayload()))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, "participant created", body.Message)
	require.Equal(t, "Reyes", svc.lastCreate.LastName)
	require.Equal(t, audit.Actor{ID: 3, Role: "admin"}, svc.lastActor)
}

func TestParticipantHandlerCreateReturnsExisting(t *testing.T) {
	svc := &mockParticipantService{created: false}
	app := newParticipantApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/participants", participantPayload()))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "participant already registered", body.Message)
}

func TestParticipantHandlerRejectsMalformedBody(t *testing.T) {
	svc := &mockParticipantService{}
	app := newParticipantApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/participants", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.calls)
}

func TestParticipantHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrParticipantNotFound, fiber.StatusNotFound},
		{"repository not found", repository.ErrNotFound, fiber.StatusNotFound},
		{"unknown field", repository.ErrUnknownField, fiber.StatusBadRequest},
		{"invalid input", service.ErrInvalidInput, fiber.StatusBadRequest},
		{"missing actor", audit.ErrMissingActor, fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockParticipantService{err: tc.err}
			app := newParticipantApp(svc)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/participants/8/restore", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, []string{"restore"}, svc.calls)
		})
	}
}
