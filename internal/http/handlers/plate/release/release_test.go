package release

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/parking-manager/internal/models"
	parking "github.com/magabrotheeeer/parking-manager/internal/services/parking"
)

// MockService реализует интерфейс Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ReleasePlate(ctx context.Context, rawPlate string) (*models.User, error) {
	args := m.Called(ctx, rawPlate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func doRequest(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := New(noopLogger(), svc)
	req := httptest.NewRequest(http.MethodPost, "/release-plate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServeHTTP_Success(t *testing.T) {
	exit := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	svc := new(MockService)
	svc.On("ReleasePlate", mock.Anything, "ABC123").Return(&models.User{
		UID:       "uid-1",
		ParkingID: models.DefaultParkingID,
		ExitTime:  &exit,
	}, nil)

	rec := doRequest(t, svc, `{"plate": "ABC123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user has left parking")
	svc.AssertExpectations(t)
}

func TestServeHTTP_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("ReleasePlate", mock.Anything, "ZZ000").Return(nil, parking.ErrNotFound)

	rec := doRequest(t, svc, `{"plate": "ZZ000"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeHTTP_EmptyPlate(t *testing.T) {
	svc := new(MockService)
	svc.On("ReleasePlate", mock.Anything, "").Return(nil, parking.ErrEmptyPlate)

	rec := doRequest(t, svc, `{"plate": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
