package formvalidator_test

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-editform/editcontext"
	"github.com/amp-labs/amp-editform/formvalidator"
	"github.com/amp-labs/amp-editform/playground"
	"github.com/amp-labs/amp-editform/rules"
	impl "github.com/go-playground/validator/v10"
)

type contact struct {
	Email string `validate:"required,email"`
	Phone string `validate:"omitempty,e164"`
}

type signup struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,username_free" ruleset:"Remote"`
}

// ExampleNew demonstrates attaching a validator to an edit context and
// reading the messages of a failed pass.
func ExampleNew() {
	ctx := context.Background()

	form := &contact{Phone: "+14155550100"}

	ec, err := editcontext.New(form)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fv, err := formvalidator.New(ctx, ec, formvalidator.WithValidator(playground.New()))
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	valid, err := fv.Validate(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Println(valid)

	for _, msg := range ec.Messages() {
		fmt.Printf("%s: %s\n", msg.Path, msg.Text)
	}
	// Output:
	// false
	// Email: 'Email' must not be empty.
}

// ExampleFormValidator_ValidateAsync demonstrates running a slow rule set
// on the async worker pool.
func ExampleFormValidator_ValidateAsync() {
	ctx := context.Background()

	taken := map[string]bool{"grace": true}

	v := playground.New()
	if err := v.RegisterRule("username_free", func(_ context.Context, fl impl.FieldLevel) bool {
		return !taken[fl.Field().String()]
	}, func(impl.FieldError, string) string {
		return "That username is taken."
	}); err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	form := &signup{Email: "grace@example.com", Username: "grace"}

	ec, err := editcontext.New(form)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fv, err := formvalidator.New(ctx, ec, formvalidator.WithValidator(v))
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	valid, err := fv.ValidateAsync(ctx, func(s *rules.Strategy) {
		s.IncludeRuleSets("Remote")
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Println(valid)
	fmt.Println(ec.MessagesFor(ec.Field("Username")))
	// Output:
	// false
	// [That username is taken.]
}
