package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestClonedErrorsMatchTemplate(t *testing.T) {
	cloned := Clone(ErrAlreadyRegistered, "already registered for this event")
	wrapped := fmt.Errorf("register: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrAlreadyRegistered))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.True(t, HasCode(wrapped, ErrAlreadyRegistered.Code))
	assert.Equal(t, "already registered", ErrAlreadyRegistered.Message)
}

func TestWithDetailsDoesNotMutateTemplate(t *testing.T) {
	detailed := WithDetails(ErrProfileRejected, map[string]interface{}{"reason": "incomplete documents"})
	assert.Equal(t, "incomplete documents", detailed.Details["reason"])
	assert.Nil(t, ErrProfileRejected.Details)
}
