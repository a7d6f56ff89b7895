package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels_Taxonomy(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrMissingEditContext, ErrConfiguration)
	assert.ErrorIs(t, ErrModelNotPointer, ErrConfiguration)
	assert.ErrorIs(t, ErrNoPendingValidation, ErrUsage)
	assert.NotErrorIs(t, ErrNoPendingValidation, ErrConfiguration)
	assert.NotErrorIs(t, ErrMissingEditContext, ErrUsage)
}

func TestCollection_Add(t *testing.T) {
	t.Parallel()

	t.Run("adds non-nil errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errors.New("handler 1")) //nolint:err113
		c.Add(errors.New("handler 2")) //nolint:err113

		assert.True(t, c.HasError())
		assert.Len(t, c.errors, 2)
	})

	t.Run("ignores nil errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(nil)

		assert.False(t, c.HasError())
		assert.Empty(t, c.errors)
	})
}

func TestCollection_GetError(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when empty", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}

		assert.NoError(t, c.GetError())
	})

	t.Run("returns single error", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("handler 1") //nolint:err113
		c.Add(err1)

		assert.Equal(t, err1, c.GetError())
	})

	t.Run("returns joined errors for multiple errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("handler 1") //nolint:err113
		err2 := errors.New("handler 2") //nolint:err113

		c.Add(err1)
		c.Add(err2)

		err := c.GetError()

		require.Error(t, err)
		require.ErrorIs(t, err, err1)
		require.ErrorIs(t, err, err2)
	})

	t.Run("returns nil after clear", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errors.New("handler")) //nolint:err113
		c.Clear()

		assert.NoError(t, c.GetError())
	})
}
