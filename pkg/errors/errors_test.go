package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/watch/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestSourceInvalidError(t *testing.T) {
	t.Run("with selector", func(t *testing.T) {
		err := &pkgerrors.SourceInvalidError{
			Source:   "property object",
			Selector: "counter",
			Message:  "property not defined",
		}
		assert.Equal(t, `cannot observe "counter" on property object: property not defined`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrSourceInvalid))
	})

	t.Run("without selector", func(t *testing.T) {
		err := &pkgerrors.SourceInvalidError{
			Source:  "event center",
			Message: "center is closed",
		}
		assert.Equal(t, "cannot observe event center: center is closed", err.Error())
		assert.True(t, pkgerrors.IsSourceInvalid(err))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewSourceInvalidError("property object", "missing", "property not defined")
		assert.True(t, pkgerrors.IsSourceInvalid(err))
	})

	t.Run("wrapped", func(t *testing.T) {
		base := pkgerrors.NewSourceInvalidError("property object", "x", "nope")
		wrapped := fmt.Errorf("starting observer: %w", base)
		assert.True(t, pkgerrors.IsSourceInvalid(wrapped))
	})
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("property", "counter")
	assert.Equal(t, "property counter not found", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, pkgerrors.IsSourceInvalid(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "callback",
			Message: "cannot be nil",
		}
		assert.Equal(t, "validation failed for field callback: cannot be nil", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad selector"}
		assert.Equal(t, "validation failed: bad selector", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestParseError(t *testing.T) {
	base := errors.New("unexpected mapping key")
	err := pkgerrors.WrapParse("yaml", "watches.yaml", base)
	assert.Equal(t, "parse error in yaml file watches.yaml: unexpected mapping key", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("manifest", "watch needs a property or an event", nil)
	assert.Equal(t, "config error in manifest: watch needs a property or an event", err.Error())
}

func TestTornDownSentinel(t *testing.T) {
	wrapped := fmt.Errorf("resume: %w", pkgerrors.ErrTornDown)
	assert.True(t, pkgerrors.IsTornDown(wrapped))
	assert.False(t, pkgerrors.IsTornDown(errors.New("other")))
}

func TestWrapResource(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapResource("create", "observer", "", nil))
	})

	t.Run("with id", func(t *testing.T) {
		err := pkgerrors.WrapResource("register", "watch", "counter", errors.New("boom"))
		assert.Equal(t, "failed to register watch counter: boom", err.Error())
	})

	t.Run("without id", func(t *testing.T) {
		err := pkgerrors.WrapResource("register", "watch", "", errors.New("boom"))
		assert.Equal(t, "failed to register watch: boom", err.Error())
	})
}
