package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler("every now and then", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestScheduler_ForceRunRecordsResults(t *testing.T) {
	targets := []Target{
		{Name: "airnow", Check: func(context.Context) error { return nil }},
		{Name: "nominatim", Check: func(context.Context) error { return errors.New("HTTP 503") }},
	}

	s, err := NewScheduler("@every 1h", targets, zap.NewNop())
	require.NoError(t, err)

	s.ForceRun()

	status := s.GetStatus()
	results, ok := status["results"].(map[string]ProbeResult)
	require.True(t, ok)
	require.Len(t, results, 2)

	assert.True(t, results["airnow"].Healthy)
	assert.Empty(t, results["airnow"].Error)
	assert.False(t, results["nominatim"].Healthy)
	assert.Equal(t, "HTTP 503", results["nominatim"].Error)
	assert.Equal(t, "@every 1h", status["schedule"])
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("@every 1h", nil, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	s.Start()
	assert.Equal(t, true, s.GetStatus()["running"])

	s.Stop()
	s.Stop()
	assert.Equal(t, false, s.GetStatus()["running"])
}

func TestScheduler_StartChecksTargetsImmediately(t *testing.T) {
	checked := make(chan struct{}, 1)
	targets := []Target{{Name: "airnow", Check: func(context.Context) error {
		select {
		case checked <- struct{}{}:
		default:
		}
		return nil
	}}}

	s, err := NewScheduler("@every 1h", targets, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-checked:
	case <-time.After(2 * time.Second):
		t.Fatal("targets were not checked on start")
	}

	assert.Eventually(t, func() bool {
		results, _ := s.GetStatus()["results"].(map[string]ProbeResult)
		return results["airnow"].Healthy
	}, 2*time.Second, 10*time.Millisecond)
}
