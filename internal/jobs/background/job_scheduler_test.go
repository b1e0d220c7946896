package background

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojohub/internal/config"
	"dojohub/internal/jobs"
)

func TestNewJobScheduler_RegistersConfiguredJobs(t *testing.T) {
	cfg := config.CronConfig{
		SuspensionInterval:  time.Hour,
		TrialInterval:       time.Hour,
		MaterializeInterval: 0,
		DashboardInterval:   5 * time.Minute,
	}
	js, err := NewJobScheduler(cfg, Jobs{
		Suspension:   jobs.NewOverdueSuspension(nil, nil, 0),
		Trials:       jobs.NewTrialExpiry(nil, nil),
		Materializer: jobs.NewScheduleMaterializer(nil, 28),
	})
	require.NoError(t, err)
	defer func() { _ = js.Stop() }()

	status := js.GetJobStatus()

	require.Len(t, status, 2)
	assert.Equal(t, jobs.OverdueSuspensionJob, status[0].Name)
	assert.Equal(t, jobs.TrialExpiryJob, status[1].Name)
}

func TestNewJobScheduler_NoJobs(t *testing.T) {
	js, err := NewJobScheduler(config.CronConfig{SuspensionInterval: time.Hour}, Jobs{})
	require.NoError(t, err)
	defer func() { _ = js.Stop() }()

	assert.Empty(t, js.GetJobStatus())
}
