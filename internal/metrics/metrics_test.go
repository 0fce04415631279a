package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()

	m.TrackingSaves.WithLabelValues("ok").Inc()
	m.TrackingSaves.WithLabelValues("ok").Inc()
	m.RemindersSent.WithLabelValues("sms", "error").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrackingSaves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent.WithLabelValues("sms", "error")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["kidneymate_tracking_saves_total"])
	assert.True(t, names["go_goroutines"])
}

func TestNewIsIndependent(t *testing.T) {
	a := New()
	b := New()

	a.ReportUploads.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReportUploads))
}
