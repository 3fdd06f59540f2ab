package check

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parking-manager/internal/models"
	parking "github.com/magabrotheeeer/parking-manager/internal/services/parking"
)

// MockService реализует интерфейс Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CheckPlate(ctx context.Context, rawPlate string) (*models.User, error) {
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
	req := httptest.NewRequest(http.MethodPost, "/check-plate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServeHTTP_Success(t *testing.T) {
	arrival := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc := new(MockService)
	svc.On("CheckPlate", mock.Anything, "1-ABC123").Return(&models.User{
		UID:         "uid-1",
		Name:        "Dupont",
		Plate:       "ABC123",
		ParkingID:   "1",
		ArrivalTime: &arrival,
	}, nil)

	rec := doRequest(t, svc, `{"plate": "1-ABC123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Message string      `json:"message"`
			User    models.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "user has parked", resp.Data.Message)
	assert.Equal(t, "uid-1", resp.Data.User.UID)
	assert.Equal(t, "1", resp.Data.User.ParkingID)
	svc.AssertExpectations(t)
}

func TestServeHTTP_ResponseDoesNotLeakPasswordHash(t *testing.T) {
	svc := new(MockService)
	svc.On("CheckPlate", mock.Anything, "ABC123").Return(&models.User{
		UID:          "uid-1",
		PasswordHash: "$2a$10$secret-hash",
		ParkingID:    "1",
	}, nil)

	rec := doRequest(t, svc, `{"plate": "ABC123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestServeHTTP_BadJSON(t *testing.T) {
	svc := new(MockService)

	rec := doRequest(t, svc, `{plate`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CheckPlate", mock.Anything, mock.Anything)
}

func TestServeHTTP_StoreFailureIncludesCause(t *testing.T) {
	svc := new(MockService)
	svc.On("CheckPlate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("services.parking.CheckPlate: %w",
			fmt.Errorf("storage.repository.FindUserByPlate: %w", parking.ErrStoreUnavailable)))

	rec := doRequest(t, svc, `{"plate": "ABC123"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not check plate")
	assert.Contains(t, rec.Body.String(), parking.ErrStoreUnavailable.Error())
	// Внутренние префиксы операций наружу не отдаются.
	assert.NotContains(t, rec.Body.String(), "storage.repository")
}

func TestServeHTTP_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"пустой номер", parking.ErrEmptyPlate, http.StatusBadRequest},
		{"номер не найден", parking.ErrNotFound, http.StatusNotFound},
		{"конфликт версий", parking.ErrConcurrentUpdate, http.StatusConflict},
		{"хранилище недоступно", parking.ErrStoreUnavailable, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("CheckPlate", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := doRequest(t, svc, `{"plate": "ABC123"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":"Error"`)
		})
	}
}
