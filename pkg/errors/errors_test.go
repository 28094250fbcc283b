package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load idea")

	assert.Equal(t, "failed to load idea: connection refused", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestFromError(t *testing.T) {
	typed := Clone(ErrNotFound, "idea not found")
	got := FromError(fmt.Errorf("listing: %w", typed))
	require.NotNil(t, got)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, "idea not found", got.Message)

	// Untyped errors collapse to an internal error.
	got = FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)

	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	clone := Clone(ErrConflict, "idea already reported")
	assert.Equal(t, "idea already reported", clone.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Equal(t, ErrConflict.Code, clone.Code)
}
