package errs

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	t.Run("typed error is returned as is", func(t *testing.T) {
		e := From(NotFound("book not found"))
		require.NotNil(t, e)
		assert.Equal(t, http.StatusNotFound, e.Code)
		assert.Equal(t, "book not found", e.Error())
	})

	t.Run("wrapped typed error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("service: %w", Conflict("User already exist!"))
		assert.Equal(t, http.StatusConflict, CodeOf(err))
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		e := From(io.ErrUnexpectedEOF)
		assert.Equal(t, http.StatusInternalServerError, e.Code)
		assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
		assert.Equal(t, http.StatusOK, CodeOf(nil))
	})
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "db down", (&Error{Code: 500, Err: io.EOF, Msg: "db down"}).Error())
	assert.Equal(t, io.EOF.Error(), (&Error{Code: 500, Err: io.EOF}).Error())
	assert.Equal(t, "Forbidden", (&Error{Code: http.StatusForbidden}).Error())
}

func TestValidation(t *testing.T) {
	err := Validation("Validation Error", []FieldError{{Path: "email", Message: "email is required"}})
	e := From(err)
	assert.Equal(t, http.StatusBadRequest, e.Code)
	require.Len(t, e.Details, 1)
	assert.Equal(t, "email", e.Details[0].Path)
}
