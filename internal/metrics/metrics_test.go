package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(verifications.WithLabelValues(ResultMismatch))
	IncVerification(ResultMismatch)
	assert.Equal(t, before+1, testutil.ToFloat64(verifications.WithLabelValues(ResultMismatch)))

	before = testutil.ToFloat64(challengesReaped)
	AddReaped(3)
	assert.Equal(t, before+3, testutil.ToFloat64(challengesReaped))

	SetPending(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(challengesPending))
}
