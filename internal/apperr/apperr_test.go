package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Wrap(cause, apperr.KindFetch, "LIST_FAILED", "could not load interviews")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	assert.NoError(t, apperr.Wrap(nil, apperr.KindFetch, "X", "y"))
}

func TestAs_ThroughFmtWrap(t *testing.T) {
	inner := apperr.Validation("BAD_TITLE", "title %q is empty", "")
	ae := apperr.As(fmt.Errorf("save: %w", inner))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "BAD_TITLE", ae.Code)

	plain := apperr.As(errors.New("boom"))
	assert.Equal(t, apperr.KindInternal, plain.Kind)
}

func TestStatus(t *testing.T) {
	tests := map[apperr.Kind]int{
		apperr.KindAuth:       http.StatusUnauthorized,
		apperr.KindFetch:      http.StatusBadGateway,
		apperr.KindWrite:      http.StatusBadGateway,
		apperr.KindValidation: http.StatusBadRequest,
		apperr.KindNotFound:   http.StatusNotFound,
		apperr.KindBusy:       http.StatusConflict,
		apperr.KindInternal:   http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, apperr.Status(kind), kind)
	}
}
