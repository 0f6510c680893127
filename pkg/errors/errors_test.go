package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medichain/ledger-api/pkg/errors"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err    *errors.AppError
		status int
	}{
		{errors.NotFound("patient", nil), http.StatusNotFound},
		{errors.InvalidArgument("bad input", nil), http.StatusBadRequest},
		{errors.Unauthenticated("no token", nil), http.StatusUnauthorized},
		{errors.Authorization("not admin", nil), http.StatusForbidden},
		{errors.DuplicateID("doctor", 7), http.StatusConflict},
		{errors.InsufficientStock("out of stock"), http.StatusConflict},
		{errors.InvalidTransition("already settled"), http.StatusConflict},
		{errors.AlreadyInitialized("ledger already initialized"), http.StatusConflict},
		{errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.StatusCode(), c.err.Message)
	}
}

func TestHasCodeUnwraps(t *testing.T) {
	base := errors.NotFound("medicine", nil)
	wrapped := fmt.Errorf("loading catalog: %w", base)

	assert.True(t, errors.HasCode(wrapped, errors.ErrNotFound))
	assert.False(t, errors.HasCode(wrapped, errors.ErrAuthorization))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrNotFound))
	assert.False(t, errors.HasCode(nil, errors.ErrNotFound))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := errors.InvalidArgument("invalid password", fmt.Errorf("too short"))
	assert.Contains(t, err.Error(), "invalid password")
	assert.Contains(t, err.Error(), "too short")
	assert.Equal(t, "too short", err.Unwrap().Error())
}
