// Package logger provides slog configuration and context-scoped loggers for
// form validation. Values attached to a context with With (form model type,
// validation id) are added to every record logged through Get.
package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var subsystem atomic.Value //nolint:gochecknoglobals

var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

// Options configures the process-wide slog default.
type Options struct {
	// Subsystem is attached to every record as "subsystem".
	Subsystem string

	// JSON selects the JSON handler. Ignored when Handler is set.
	JSON bool

	// MinLevel is the minimum level emitted. Ignored when Handler is set.
	MinLevel slog.Level

	// LegacyLevel is the level used for records written through the log package.
	LegacyLevel slog.Level

	// Output defaults to os.Stdout.
	Output io.Writer

	// Handler overrides the text/JSON handler, e.g. with an OpenTelemetry bridge.
	Handler slog.Handler
}

// ConfigureLoggingWithOptions installs a new slog default built from opts and
// redirects the standard log package to it.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	handler := opts.Handler

	if handler == nil {
		if opts.Output == nil {
			opts.Output = os.Stdout
		}

		if opts.JSON {
			handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
				Level: opts.MinLevel,
			})
		} else {
			handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
				Level: opts.MinLevel,
			})
		}
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// WithMuted returns a context whose loggers discard everything.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the configured subsystem for loggers derived from ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem stored in ctx, falling back to the
// configured default.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
		return val
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// WithValidationId tags ctx with the id of a single validation pass.
func WithValidationId(ctx context.Context, validationId string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("validation_id"), validationId)
}

// GetValidationId returns the validation pass id stored in ctx, if any.
func GetValidationId(ctx context.Context) (string, bool) { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	val, ok := ctx.Value(contextKey("validation_id")).(string)

	return val, ok
}

// WithLogger makes Get build on l instead of slog.Default for this context.
// Tests use it to route each test's logs to its own output.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("base_logger"), l)
}

func baseLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey("base_logger")).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}

func getRealContext(ctx ...context.Context) context.Context {
	for _, c := range ctx {
		if c != nil {
			return c
		}
	}

	return context.Background()
}

type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n *nullHandler) WithGroup(_ string) slog.Handler {
	return n
}

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns a logger carrying the subsystem, validation id and any values
// attached with With. The first non-nil context wins; no context means
// context.Background().
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := getRealContext(ctx...)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := baseLogger(realCtx).With("subsystem", GetSubsystem(realCtx))

	if validationId, found := GetValidationId(realCtx); found {
		logger = logger.With("validation-id", validationId)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a context carrying extra key/value pairs for Get.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	if ctx == nil {
		ctx = context.Background()
	}

	existing := getValues(ctx)
	vals := make([]any, 0, len(existing)+len(values))
	vals = append(vals, existing...)
	vals = append(vals, values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any { //nolint:contextcheck
	if ctx == nil {
		return nil
	}

	vals, ok := ctx.Value(contextKey("loggerValues")).([]any)
	if !ok {
		return nil
	}

	return vals
}
