package register

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auth "github.com/magabrotheeeer/parking-manager/internal/services/auth"
)

// MockService реализует интерфейс Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, input auth.RegisterInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doRequest(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := New(noopLogger(), svc)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServeHTTP_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, auth.RegisterInput{
		Name:      "Dupont",
		Email:     "dupont@example.com",
		Password:  "secret123",
		Plate:     "1-XY99ZZ",
		Telephone: 32470000000,
	}).Return("uid-1", nil)

	rec := doRequest(t, svc, `{
		"name": "Dupont",
		"email": "dupont@example.com",
		"password": "secret123",
		"plate": "1-XY99ZZ",
		"telephone": 32470000000
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uid-1")
	svc.AssertExpectations(t)
}

func TestServeHTTP_ValidationError(t *testing.T) {
	svc := new(MockService)

	rec := doRequest(t, svc, `{
		"name": "Dupont",
		"email": "not-an-email",
		"password": "123",
		"plate": "ABC123",
		"telephone": 32470000000
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestServeHTTP_EmailTaken(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, mock.Anything).Return("", auth.ErrEmailTaken)

	rec := doRequest(t, svc, `{
		"name": "Dupont",
		"email": "dupont@example.com",
		"password": "secret123",
		"plate": "ABC123",
		"telephone": 32470000000
	}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServeHTTP_BadJSON(t *testing.T) {
	svc := new(MockService)

	rec := doRequest(t, svc, `{name:`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
