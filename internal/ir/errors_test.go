package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewModelError(ErrCodeUnknownClass, "class not found in model: %s", "Nope").WithKey("precompute.constructquery.x")
	assert.Equal(t, "model error [UNKNOWN_CLASS]: class not found in model: Nope (key=precompute.constructquery.x)", err.Error())
}

func TestErrorWithKeyKeepsExisting(t *testing.T) {
	err := NewConfigError(ErrCodeUnknownKey, "bad").WithKey("first").WithKey("second")
	assert.Equal(t, "first", err.Key)
}

func TestErrorPredicatesThroughWrapping(t *testing.T) {
	cause := errors.New("disk on fire")
	storeErr := NewStoreError("estimate", twoClassPlan(), cause)
	wrapped := fmt.Errorf("run: %w", storeErr)

	assert.True(t, IsStoreError(wrapped))
	assert.False(t, IsConfigError(wrapped))
	assert.Equal(t, ErrCodeStoreFailed, CodeOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "Employee AS a0")

	assert.True(t, IsPlanningError(NewPlanningError(ErrCodeMalformedPath, "x")))
	assert.True(t, IsModelError(NewModelError(ErrCodeUnknownRelation, "x")))
	assert.Equal(t, ErrorKind(""), KindOf(cause))
	assert.Equal(t, ErrorCode(""), CodeOf(cause))
}
