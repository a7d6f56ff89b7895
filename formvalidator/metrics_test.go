package formvalidator

import (
	"testing"

	"github.com/amp-labs/amp-editform/tests"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, resultValid, resultLabel(true, nil))
	assert.Equal(t, resultInvalid, resultLabel(false, nil))
	assert.Equal(t, resultError, resultLabel(true, errBroken))
}

func TestMetrics_CountPasses(t *testing.T) {
	t.Parallel()

	ctx := tests.GetUniqueContext(t)
	counter := validationsTotal.WithLabelValues(modeSync.String(), resultInvalid)
	before := testutil.ToFloat64(counter)

	_, fv := newForm(t, &person{}, WithValidator(&fakeValidator{failName: true}))

	valid, err := fv.Validate(ctx)
	require.NoError(t, err)
	require.False(t, valid)

	// Other tests run in parallel, so only a lower bound holds.
	assert.GreaterOrEqual(t, testutil.ToFloat64(counter), before+1)
}
