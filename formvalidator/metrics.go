package formvalidator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "editform_validations_total",
		Help: "The total number of form validation passes",
	}, []string{"mode", "result"})

	validationTime = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name: "editform_validation_time_millis",
		Help: "The time a form validation pass takes, in milliseconds",
		Buckets: []float64{
			1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000,
		},
	}, []string{"mode", "result"})

	fieldValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "editform_field_validations_total",
		Help: "The total number of single-field validations triggered by field changes",
	}, []string{"result"})
)

const (
	resultValid   = "valid"
	resultInvalid = "invalid"
	resultError   = "error"
)

func init() {
	for _, mode := range []string{modeSync.String(), modeAsync.String()} {
		for _, result := range []string{resultValid, resultInvalid, resultError} {
			validationsTotal.WithLabelValues(mode, result).Add(0)
		}
	}
}

func resultLabel(valid bool, err error) string {
	switch {
	case err != nil:
		return resultError
	case valid:
		return resultValid
	default:
		return resultInvalid
	}
}
