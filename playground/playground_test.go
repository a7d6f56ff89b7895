package playground

import (
	"context"
	"testing"
	"time"

	"github.com/amp-labs/amp-editform/rules"
	impl "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Line1 string `validate:"required"`
	City  string `validate:"required,max=20"`
}

type signup struct {
	FirstName string   `validate:"required"`
	Email     string   `validate:"required,email"`
	Age       int      `validate:"gte=18"`
	Address   address
	Tags      []string `validate:"max=2,dive,required"`
	Username  string   `validate:"required,username_free" ruleset:"Remote"`
}

func newValidator(t *testing.T, taken ...string) *Validator {
	t.Helper()

	v := New()

	require.NoError(t, v.RegisterRule("username_free", func(_ context.Context, fl impl.FieldLevel) bool {
		for _, name := range taken {
			if fl.Field().String() == name {
				return false
			}
		}

		return true
	}, func(_ impl.FieldError, display string) string {
		return "'" + display + "' is already taken."
	}))

	return v
}

func validSignup() *signup {
	return &signup{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Age:       36,
		Address:   address{Line1: "1 Analytical Way", City: "London"},
		Username:  "ada",
	}
}

func paths(result *rules.Result) []string {
	out := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		out = append(out, f.PropertyName)
	}

	return out
}

func TestValidate_DefaultRuleSet(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	result, err := v.Validate(t.Context(), &signup{Tags: []string{"a", ""}}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"FirstName", "Email", "Age", "Address.Line1", "Address.City", "Tags[1]",
	}, paths(result))

	assert.Equal(t, "'First Name' must not be empty.", result.Failures[0].Message)
	assert.Equal(t, "required", result.Failures[0].Tag)
	assert.Equal(t, "'Age' must be greater than or equal to 18.", result.Failures[2].Message)
	assert.Equal(t, rules.SeverityError, result.Failures[0].Severity)
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	result, err := v.Validate(t.Context(), validSignup(), nil)
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidate_RuleSets(t *testing.T) {
	t.Parallel()

	v := newValidator(t, "taken")

	model := validSignup()
	model.Username = "taken"
	model.FirstName = ""

	result, err := v.Validate(t.Context(), model, rules.NewStrategy().IncludeRuleSets("Remote"))
	require.NoError(t, err)

	require.Equal(t, []string{"Username"}, paths(result))
	assert.Equal(t, "'Username' is already taken.", result.Failures[0].Message)

	result, err = v.Validate(t.Context(), model,
		rules.NewStrategy().IncludeRuleSets("Remote").IncludeRulesNotInRuleSet())
	require.NoError(t, err)

	assert.Equal(t, []string{"FirstName", "Username"}, paths(result))
}

func TestValidate_IncludePropertiesPartial(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	model := &signup{Email: "not-an-email"}

	result, err := v.Validate(t.Context(), model, rules.NewStrategy().IncludeProperties("Email"))
	require.NoError(t, err)

	require.Equal(t, []string{"Email"}, paths(result))
	assert.Equal(t, "'Email' is not a valid email address.", result.Failures[0].Message)
	assert.Equal(t, "not-an-email", result.Failures[0].AttemptedValue)
}

func TestValidate_IncludePropertiesNested(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	model := validSignup()
	model.Address = address{City: "A city name that is far too long"}
	model.Email = ""

	result, err := v.Validate(t.Context(), model, rules.NewStrategy().IncludeProperties("Address"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Address.Line1", "Address.City"}, paths(result))
	assert.Equal(t, "'City' must be at most 20 characters long.", result.Failures[1].Message)
}

func TestValidate_UnknownPropertySelectsNothing(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	result, err := v.Validate(t.Context(), &signup{}, rules.NewStrategy().IncludeProperties("Nope"))
	require.NoError(t, err)
	assert.True(t, result.IsValid())
}

func TestValidate_StopOnFirstFailure(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	result, err := v.Validate(t.Context(), &signup{}, rules.NewStrategy().StopOnFirstFailure())
	require.NoError(t, err)
	assert.Equal(t, []string{"FirstName"}, paths(result))
}

func TestValidate_UnsupportedType(t *testing.T) {
	t.Parallel()

	v := New()

	var nilSignup *signup

	assert.False(t, v.CanValidate(42))
	assert.False(t, v.CanValidate(nilSignup))
	assert.True(t, v.CanValidate(signup{}))
	assert.True(t, v.CanValidate(&signup{}))

	_, err := v.Validate(t.Context(), 42, nil)
	require.ErrorIs(t, err, rules.ErrUnsupportedType)
}

func TestWithMessage(t *testing.T) {
	t.Parallel()

	v := New(WithMessage("required", func(_ impl.FieldError, display string) string {
		return display + " please"
	}))

	type form struct {
		Name string `validate:"required"`
	}

	result, err := v.Validate(t.Context(), &form{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Name please", result.Failures[0].Message)
}

func TestValidateAsync_WaitsForBlockingRule(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	v := New()
	require.NoError(t, v.RegisterRule("slow_unique", func(ctx context.Context, _ impl.FieldLevel) bool {
		select {
		case <-release:
			return false
		case <-ctx.Done():
			return true
		}
	}, nil))

	type form struct {
		Handle string `validate:"slow_unique"`
	}

	fut := v.ValidateAsync(t.Context(), &form{Handle: "ada"}, nil)

	time.Sleep(10 * time.Millisecond)
	assert.False(t, fut.IsDone())

	close(release)

	result, err := fut.AwaitContext(t.Context())
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "'Handle' failed the 'slow_unique' check.", result.Failures[0].Message)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"FirstName":   "First Name",
		"HTTPPort":    "HTTP Port",
		"postal_code": "Postal Code",
		"Line1":       "Line1",
		"Email":       "Email",
	}

	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}
