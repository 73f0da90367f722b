package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordInstallmentStatus(t *testing.T) {
	before := testutil.ToFloat64(Schedule.InstallmentsClassified.WithLabelValues("missed"))

	RecordInstallmentStatus("missed")
	RecordInstallmentStatus("missed")

	after := testutil.ToFloat64(Schedule.InstallmentsClassified.WithLabelValues("missed"))
	assert.Equal(t, before+2, after)
}

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(Sweep.TransitionsEmitted.WithLabelValues("pending", "false"))

	RecordTransition("pending", false)

	assert.Equal(t, before+1, testutil.ToFloat64(Sweep.TransitionsEmitted.WithLabelValues("pending", "false")))
}

func TestRecordIntegrityWarnings(t *testing.T) {
	before := testutil.ToFloat64(Schedule.IntegrityWarnings)

	RecordIntegrityWarnings(3)

	assert.Equal(t, before+3, testutil.ToFloat64(Schedule.IntegrityWarnings))
}

func TestRecordSweepRun(t *testing.T) {
	before := testutil.ToFloat64(Sweep.Runs.WithLabelValues("success"))

	RecordSweepRun("success", 2*time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(Sweep.Runs.WithLabelValues("success")))
}
