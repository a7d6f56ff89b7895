package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amp-labs/amp-editform/playground"
	"github.com/amp-labs/amp-editform/should"
	impl "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const remoteRuleSet = "Remote"

// Signup is the form formcheck validates.
type Signup struct {
	Email    string    `validate:"required,email"                           yaml:"email"`
	Username string    `validate:"required,min=3,max=32,alphanum,username_free" yaml:"username" ruleset:"Remote"` //nolint:lll
	Password string    `validate:"required,min=8"                           yaml:"password"`
	Confirm  string    `validate:"required,eqfield=Password"                yaml:"confirm"`
	Age      int       `validate:"gte=13,lte=130"                           yaml:"age"`
	Website  string    `validate:"omitempty,url"                            yaml:"website"`
	Address  Address   `yaml:"address"`
	Contacts []Contact `validate:"dive"                                     yaml:"contacts"`
}

// Address is the postal address part of a Signup.
type Address struct {
	Line1   string `validate:"required"       yaml:"line1"`
	City    string `validate:"required"       yaml:"city"`
	Country string `validate:"required,len=2" yaml:"country"`
}

// Contact is an emergency contact listed on a Signup.
type Contact struct {
	Name  string `validate:"required"       yaml:"name"`
	Phone string `validate:"required,e164"  yaml:"phone"`
}

var errFormFile = errors.New("invalid form file")

func loadSignup(ctx context.Context, path string) (*Signup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer should.Close(ctx, f, "closing form file")

	var signup Signup

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(&signup); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errFormFile, path, err)
	}

	return &signup, nil
}

// usernameDirectory stands in for a remote lookup of registered usernames.
type usernameDirectory struct {
	taken map[string]bool
	delay time.Duration
}

func newUsernameDirectory(taken []string, delay time.Duration) *usernameDirectory {
	dir := &usernameDirectory{taken: make(map[string]bool, len(taken)), delay: delay}

	for _, name := range taken {
		if name = strings.TrimSpace(name); name != "" {
			dir.taken[strings.ToLower(name)] = true
		}
	}

	return dir
}

func (d *usernameDirectory) free(ctx context.Context, fl impl.FieldLevel) bool {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	return !d.taken[strings.ToLower(fl.Field().String())]
}

func newSignupValidator(dir *usernameDirectory) (*playground.Validator, error) {
	v := playground.New()

	err := v.RegisterRule("username_free", dir.free, func(fe impl.FieldError, display string) string {
		return fmt.Sprintf("'%s' %q is already taken.", display, fe.Value())
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// field is a top-level Signup field that can be edited interactively.
type field struct {
	name  string
	get   func(*Signup) string
	set   func(*Signup, string) error
	check func(string) error
}

func checkInt(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}

	return nil
}

func editableFields() []field {
	text := func(name string, ptr func(*Signup) *string) field {
		return field{
			name: name,
			get:  func(s *Signup) string { return *ptr(s) },
			set: func(s *Signup, v string) error {
				*ptr(s) = v

				return nil
			},
		}
	}

	return []field{
		text("Email", func(s *Signup) *string { return &s.Email }),
		text("Username", func(s *Signup) *string { return &s.Username }),
		text("Password", func(s *Signup) *string { return &s.Password }),
		text("Confirm", func(s *Signup) *string { return &s.Confirm }),
		{
			name: "Age",
			get:  func(s *Signup) string { return strconv.Itoa(s.Age) },
			set: func(s *Signup, v string) error {
				age, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid integer: %w", err)
				}

				s.Age = age

				return nil
			},
			check: checkInt,
		},
		text("Website", func(s *Signup) *string { return &s.Website }),
	}
}
