package achrome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutomationErrorFormat(t *testing.T) {
	err := NewAutomationError(ErrorTypeNotFound, "cannot close window id=%d: not found", 3)
	assert.Equal(t, "not_found: cannot close window id=3: not found", err.Error())
}

func TestAutomationErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := wrapAutomationError(ErrorTypeScriptFailed, fmt.Errorf("osascript: %w", cause))
	assert.ErrorIs(t, err, cause)

	var automationErr *AutomationError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", error(err)), &automationErr)
	assert.Equal(t, ErrorTypeScriptFailed, automationErr.Type)
}

func TestIsErrorType(t *testing.T) {
	err := NewAutomationError(ErrorTypeMultipleObjects, "found 2")
	assert.True(t, IsErrorType(err, ErrorTypeMultipleObjects))
	assert.False(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeNotFound))
	assert.False(t, IsErrorType(nil, ErrorTypeNotFound))

	assert.True(t, IsNotFound(NewAutomationError(ErrorTypeNotFound, "gone")))
	assert.False(t, IsNotFound(err))
}
