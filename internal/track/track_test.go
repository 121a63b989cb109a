package track

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 7: the registry contains a key iff a live handle exists with
// that path, and acquire-by-import is idempotent.
func TestAcquireByImportIsIdempotentAndDedups(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(false)

	t1, err := r.AcquireByImport(ctx, "/bin/true", "/tmp/fixture-a.wav", 44100)
	require.NoError(t, err)
	assert.Equal(t, int32(1), t1.Refcount())

	_, ok := r.Lookup("/tmp/fixture-a.wav")
	assert.True(t, ok)

	t2, err := r.AcquireByImport(ctx, "/bin/true", "/tmp/fixture-a.wav", 44100)
	require.NoError(t, err)
	assert.Same(t, t1, t2)
	assert.Equal(t, int32(2), t2.Refcount())

	r.Release(ctx, t2)
	_, ok = r.Lookup("/tmp/fixture-a.wav")
	assert.True(t, ok, "still referenced once")

	r.Release(ctx, t1)
	_, ok = r.Lookup("/tmp/fixture-a.wav")
	assert.False(t, ok, "registry entry removed once refcount hits zero")
}

func TestAcquireEmptyNeverRemovedAndPanicsOnZero(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(false)

	e1 := r.AcquireEmpty()
	e2 := r.AcquireEmpty()
	assert.Same(t, e1, e2)
	assert.Equal(t, int32(3), e1.Refcount()) // seeded at 1, plus two acquires

	assert.Panics(t, func() {
		for i := 0; i < 3; i++ {
			r.Release(ctx, e1)
		}
	})
}

func TestRecordingTrackEnsureSpaceAndSetLength(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(false)

	tr := r.AcquireForRecording(48000)
	assert.True(t, tr.Finished())
	assert.Equal(t, int32(1), tr.Refcount())

	require.NoError(t, tr.EnsureSpace(ctx, BlockFrames+10))
	assert.GreaterOrEqual(t, len(tr.blocks), 2)

	tr.SetLength(500)
	assert.Equal(t, uint32(500), tr.Length())
	assert.Equal(t, 500*FrameBytes, tr.Bytes())
}

func TestAccessPCMGrowsBlocksAndCommitPublishesWholeFrames(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(false)
	tr := r.AcquireForRecording(44100)

	pcm, err := tr.AccessPCM(ctx)
	require.NoError(t, err)
	assert.Len(t, pcm, BlockBytes)

	tr.Commit(ctx, FrameBytes*3+1) // three whole frames plus a partial byte
	assert.Equal(t, uint32(3), tr.Length())

	pcm2, err := tr.AccessPCM(ctx)
	require.NoError(t, err)
	assert.Len(t, pcm2, BlockBytes-(FrameBytes*3+1))
}

func TestAccessPCMReturnsAllocationExhaustedAtMaxBlocks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(false)
	tr := r.AcquireForRecording(44100)

	require.NoError(t, tr.EnsureSpace(ctx, MaxBlocks*BlockFrames))
	tr.bytes = MaxBlocks * BlockBytes // force the next AccessPCM past the last block

	_, err := tr.AccessPCM(ctx)
	assert.Error(t, err)
}
