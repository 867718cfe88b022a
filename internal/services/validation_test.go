package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type issueForm struct {
	Plate        string `validate:"required,min=5"`
	OwnerID      string `validate:"required"`
	VehicleClass string `validate:"required,oneof=hasta_99cc 100_200cc"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid form", func(t *testing.T) {
		valid := issueForm{
			Plate:        "ABC12D",
			OwnerID:      "1094567890",
			VehicleClass: "hasta_99cc",
		}

		err := vh.ValidateStruct(&valid)
		assert.NoError(t, err)
	})

	t.Run("missing and malformed fields", func(t *testing.T) {
		invalid := issueForm{
			Plate: "AB", // too short
			// OwnerID missing
			VehicleClass: "camion",
		}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 3)
	})

	t.Run("class outside the tariff table", func(t *testing.T) {
		invalid := issueForm{
			Plate:        "ABC12D",
			OwnerID:      "1094567890",
			VehicleClass: "250cc",
		}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "VehicleClass", validationErrors[0].Field())
		assert.Equal(t, "oneof", validationErrors[0].Tag())
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("validation details included per field", func(t *testing.T) {
		vh := NewValidationHelper()
		invalid := issueForm{
			Plate:        "AB",
			VehicleClass: "camion",
		}

		validationErr := vh.ValidateStruct(&invalid)
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "Plate")
		assert.Contains(t, response.Details, "OwnerID")
		assert.Contains(t, response.Details, "VehicleClass")
	})
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing record", ErrNotFound, http.StatusNotFound},
		{"non positive amount", ErrInvalidAmount, http.StatusBadRequest},
		{"bad plate", ErrInvalidPlate, http.StatusBadRequest},
		{"class outside tariff table", ErrUnknownVehicleClass, http.StatusBadRequest},
		{"document already attached", ErrAlreadyAttached, http.StatusConflict},
		{"unmapped error", errors.New("tx failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusForError(tc.err))
		})
	}
}
