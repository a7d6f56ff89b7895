package rules

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string
	Password string
}

func (s *signup) Validate() error {
	var errs []error

	if s.Email == "" {
		errs = append(errs, NewFieldError("Email", "Email is required"))
	}

	if len(s.Password) < 8 {
		errs = append(errs, &FieldError{Property: "Password", Message: "Password is too short", Tag: "min"})
	}

	return errors.Join(errs...)
}

type lookup struct {
	Username string
	taken    map[string]bool
}

func (l *lookup) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if l.taken[l.Username] {
		return fmt.Errorf("lookup: %w", NewFieldError("Username", "Username is taken"))
	}

	return nil
}

func TestSelfValidator_FieldErrors(t *testing.T) {
	t.Parallel()

	v := SelfValidator{}
	model := &signup{Password: "short"}

	require.True(t, v.CanValidate(model))

	result, err := v.Validate(t.Context(), model, nil)
	require.NoError(t, err)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, Failure{PropertyName: "Email", Message: "Email is required"}, result.Failures[0])
	assert.Equal(t, "min", result.Failures[1].Tag)
	assert.False(t, result.IsValid())
}

func TestSelfValidator_StrategyFilters(t *testing.T) {
	t.Parallel()

	v := SelfValidator{}
	model := &signup{Password: "short"}

	result, err := v.Validate(t.Context(), model, NewStrategy().IncludeProperties("Password"))
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Password", result.Failures[0].PropertyName)
}

func TestSelfValidator_WithContextAndWrapping(t *testing.T) {
	t.Parallel()

	v := SelfValidator{}
	model := &lookup{Username: "ada", taken: map[string]bool{"ada": true}}

	result, err := v.ValidateAsync(t.Context(), model, nil).Await()
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Username", result.Failures[0].PropertyName)
	assert.Equal(t, "Username is taken", result.Failures[0].Message)
}

func TestSelfValidator_PlainErrorIsModelLevel(t *testing.T) {
	t.Parallel()

	v := SelfValidator{}
	model := Func(func() error {
		return errors.New("passwords do not match") //nolint:err113
	})

	result, err := v.Validate(t.Context(), model, nil)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Empty(t, result.Failures[0].PropertyName)
	assert.Equal(t, "passwords do not match", result.Failures[0].Message)
}

func TestSelfValidator_UnsupportedType(t *testing.T) {
	t.Parallel()

	v := SelfValidator{}

	assert.False(t, v.CanValidate(struct{}{}))

	_, err := v.Validate(t.Context(), struct{}{}, nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFuncHelpers_Nil(t *testing.T) {
	t.Parallel()

	require.NoError(t, Func(nil).Validate())
	require.NoError(t, FuncWithContext(nil).Validate(t.Context()))
}

func TestResult_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "valid", (&Result{}).String())
	assert.Equal(t, "Name: required", (&Result{Failures: []Failure{{PropertyName: "Name", Message: "required"}}}).String())
	assert.Equal(t, "warning", SeverityWarning.String())
}
