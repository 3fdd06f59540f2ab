package response

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"id": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestErrorWithDetail(t *testing.T) {
	root := errors.New("connection refused")
	wrapped := fmt.Errorf("services.parking.CheckPlate: %w",
		fmt.Errorf("storage.repository.FindUserByPlate: %w", root))

	resp := ErrorWithDetail("could not check plate", wrapped)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "could not check plate: connection refused", resp.Error)

	// Без цепочки обёрток сообщение берётся как есть.
	resp = ErrorWithDetail("could not check plate", root)
	assert.Equal(t, "could not check plate: connection refused", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email string  `validate:"required,email"`
		Price float64 `validate:"required,gt=0"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email", Price: -1})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Email")
	assert.Contains(t, resp.Error, "Price")
}
