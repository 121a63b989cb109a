package coord

import (
	"context"
	"testing"
	"time"

	"github.com/lodsb/turntable-core/internal/logx"
	"github.com/lodsb/turntable-core/internal/rtrole"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRigQuitStopsRun(t *testing.T) {
	rig, err := NewRig(logx.Default(), nil)
	require.NoError(t, err)
	defer rig.Close()

	done := make(chan error, 1)
	go func() { done <- rig.Run(context.Background(), nil) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, rig.Quit(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

// Invariant 8 (static property): anything the rig uses to mutate shared
// coordination state refuses to run under the realtime role.
func TestPostEventPanicsUnderRealtimeRole(t *testing.T) {
	rig, err := NewRig(logx.Default(), nil)
	require.NoError(t, err)
	defer rig.Close()

	rtCtx := rtrole.WithRealtime(context.Background())
	assert.Panics(t, func() {
		_ = rig.Quit(rtCtx)
	})
}
