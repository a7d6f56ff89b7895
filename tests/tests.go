// Package tests carries per-test metadata and logging through a context.
//
//	func TestSignup(t *testing.T) {
//	    ctx := tests.GetUniqueContext(t)
//	    // logger.Get(ctx) now writes to t.Log, tagged with the test id
//	}
package tests

import (
	"context"
	"testing"

	"github.com/amp-labs/amp-editform/logger"
	"github.com/google/uuid"
	"github.com/neilotoole/slogt"
)

type contextKey string

const (
	testIdKey   contextKey = "testId"
	testNameKey contextKey = "testName"
)

// GetUniqueContext derives a context from t.Context() carrying a unique test
// id ("test-<uuid>"), the test name, and a logger that writes through t.Log.
func GetUniqueContext(t *testing.T) context.Context {
	t.Helper()

	id := "test-" + uuid.New().String()

	ctx := context.WithValue(t.Context(), testIdKey, id)
	ctx = context.WithValue(ctx, testNameKey, t.Name())
	ctx = logger.WithLogger(ctx, slogt.New(t))

	return logger.With(ctx, "test-id", id)
}

// GetTestId returns the id stored by GetUniqueContext.
func GetTestId(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(testIdKey).(string)

	return id, ok
}

// GetTestName returns the test name stored by GetUniqueContext.
func GetTestName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(testNameKey).(string)

	return name, ok
}
