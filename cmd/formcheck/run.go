package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amp-labs/amp-editform/bgworker"
	"github.com/amp-labs/amp-editform/cli"
	"github.com/amp-labs/amp-editform/config"
	"github.com/amp-labs/amp-editform/editcontext"
	"github.com/amp-labs/amp-editform/formvalidator"
	"github.com/amp-labs/amp-editform/logger"
	"github.com/amp-labs/amp-editform/rules"
	"github.com/amp-labs/amp-editform/shutdown"
	"github.com/amp-labs/amp-editform/telemetry"
)

var errUsage = errors.New("usage: formcheck [flags] form.yaml")

// prompter is the part of cli.Terminal that interactive editing uses.
type prompter interface {
	PromptField(label, current string, check func(string) error) (string, error)
	MultiSelect(label string, choices ...string) ([]string, error)
}

type streams struct {
	term   prompter
	out    io.Writer
	errOut io.Writer
}

type flags struct {
	envFile     string
	async       bool
	interactive bool
	ruleSets    string
	stop        bool
	taken       string
	lookupDelay time.Duration
	width       int
	path        string
}

func parseFlags(args []string, errOut io.Writer) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("formcheck", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&f.envFile, "env", ".env", "dotenv file to load, if present")
	fs.BoolVar(&f.async, "async", false, "run async rules through ValidateAsync")
	fs.BoolVar(&f.interactive, "interactive", false, "edit each field before validating")
	fs.StringVar(&f.ruleSets, "rulesets", "", "comma separated rule sets to run (default: all)")
	fs.BoolVar(&f.stop, "stop", false, "stop at the first failure")
	fs.StringVar(&f.taken, "taken", "admin,root,support", "comma separated usernames that are already taken")
	fs.DurationVar(&f.lookupDelay, "lookup-delay", 50*time.Millisecond, "simulated latency of the username lookup") //nolint:mnd
	fs.IntVar(&f.width, "width", cli.DefaultWidth, "report width")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	if fs.NArg() != 1 {
		return flags{}, errUsage
	}

	f.path = fs.Arg(0)

	return f, nil
}

// callOptions turns the rule set flags into per-call options, or nil to keep
// the form's defaults.
func (f flags) callOptions() rules.Options {
	var sets []string

	for _, s := range strings.Split(f.ruleSets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sets = append(sets, s)
		}
	}

	if len(sets) == 0 && !f.stop {
		return nil
	}

	return func(s *rules.Strategy) {
		if len(sets) > 0 {
			s.IncludeRuleSets(sets...)
		} else {
			s.IncludeAllRuleSets()
		}

		if f.stop {
			s.StopOnFirstFailure()
		}
	}
}

func run(ctx context.Context, args []string, std streams) (bool, error) {
	f, err := parseFlags(args, std.errOut)
	if err != nil {
		return false, err
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return false, err
	}

	handler, err := telemetry.Initialize(ctx, cfg.Telemetry)
	if err != nil {
		return false, err
	}

	logger.ConfigureLoggingWithOptions(logger.Options{
		Subsystem: cfg.Subsystem,
		JSON:      cfg.LogJSON,
		MinLevel:  cfg.LogLevel,
		Output:    std.errOut,
		Handler:   handler,
	})

	ctx, stopper := shutdown.SetupHandler(ctx)
	defer stopper.Shutdown()

	stopper.BeforeShutdown(func(ctx context.Context) {
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Get(ctx).Error("Failed to shut down telemetry", "error", err)
		}
	})
	stopper.BeforeShutdown(bgworker.Stop)

	bgworker.Configure(cfg.AsyncWorkers)

	signup, err := loadSignup(ctx, f.path)
	if err != nil {
		return false, err
	}

	validator, err := newSignupValidator(newUsernameDirectory(strings.Split(f.taken, ","), f.lookupDelay))
	if err != nil {
		return false, err
	}

	ec, err := editcontext.New(signup)
	if err != nil {
		return false, err
	}

	fv, err := formvalidator.New(ctx, ec,
		formvalidator.WithValidator(validator),
		formvalidator.WithOptions(func(s *rules.Strategy) { s.IncludeAllRuleSets() }),
		formvalidator.WithAsyncTimeout(cfg.AsyncTimeout),
		formvalidator.WithValidated(func(ctx context.Context) error {
			logger.Get(ctx).Info("Form validated", "messages", len(ec.Messages()))

			return nil
		}),
	)
	if err != nil {
		return false, err
	}

	opts := f.callOptions()

	if f.interactive {
		if opts, err = edit(ctx, std, ec, signup, opts); err != nil {
			return false, err
		}
	}

	var valid bool

	if f.async {
		valid, err = fv.ValidateAsync(ctx, opts)
	} else {
		valid, err = fv.Validate(ctx, opts)
	}

	if err != nil {
		return false, err
	}

	title := "signup: " + f.path
	if err := cli.WriteReport(std.out, title, f.width, valid, ec.Messages()); err != nil {
		return false, err
	}

	return valid, nil
}

// edit prompts for every editable field and reports its messages as soon as
// it changes. When no rule sets were chosen on the command line the user
// picks them at the end.
func edit(
	ctx context.Context, std streams, ec *editcontext.EditContext, signup *Signup, opts rules.Options,
) (rules.Options, error) {
	for _, fld := range editableFields() {
		value, err := std.term.PromptField(fld.name, fld.get(signup), fld.check)
		if err != nil {
			return nil, err
		}

		if value == fld.get(signup) {
			continue
		}

		if err := fld.set(signup, value); err != nil {
			return nil, err
		}

		id := ec.Field(fld.name)
		if err := ec.NotifyFieldChanged(ctx, id); err != nil {
			return nil, err
		}

		for _, msg := range ec.MessagesFor(id) {
			fmt.Fprintf(std.out, "  ✗ %s\n", msg) //nolint:errcheck
		}
	}

	if opts != nil {
		return opts, nil
	}

	sets, err := std.term.MultiSelect("Rule sets to run", rules.DefaultRuleSet, remoteRuleSet)
	if err != nil {
		return nil, err
	}

	if len(sets) == 0 {
		return nil, nil
	}

	return func(s *rules.Strategy) { s.IncludeRuleSets(sets...) }, nil
}
