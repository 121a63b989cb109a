// Package track implements refcounted, dedup-by-path audio buffers fed by
// an external importer subprocess, plus the in-memory recording variant
// (spec §4.B).
package track

import (
	"context"
	"sync/atomic"

	"github.com/lodsb/turntable-core/internal/errs"
	"github.com/lodsb/turntable-core/internal/rtrole"
	"golang.org/x/sys/unix"
)

const (
	// BlockFrames is the number of stereo frames held by one PCM block.
	BlockFrames = 65536
	// FrameBytes is the byte size of one interleaved stereo i16 frame.
	FrameBytes = 4
	// BlockBytes is the byte size of one PCM block.
	BlockBytes = BlockFrames * FrameBytes
	// MaxBlocks bounds how far a single track may grow.
	MaxBlocks = 2048
)

type block struct {
	pcm []byte
}

// Track is a refcounted audio buffer, identified by (importer, path) when
// it came from an import, or unidentified when it is a recording buffer or
// the empty sentinel.
type Track struct {
	Importer   string
	Path       string
	SampleRate int

	refcount atomic.Int32
	length   atomic.Uint32 // published whole frames

	bytes  int // coordination-thread-only running byte count
	blocks []*block
	mlock  bool

	importHandle *importHandle // nil for recording tracks and the empty track
	terminated   bool
	finished     bool
}

// Refcount returns the current reference count.
func (t *Track) Refcount() int32 { return t.refcount.Load() }

// Length returns the published frame count, safe to call from any thread.
func (t *Track) Length() uint32 { return t.length.Load() }

// Bytes returns the coordination-thread's running byte count. Only the
// coordination thread may call this.
func (t *Track) Bytes() int { return t.bytes }

func (t *Track) Finished() bool   { return t.finished }
func (t *Track) Terminated() bool { return t.terminated }
func (t *Track) Importing() bool  { return t.importHandle != nil && !t.finished }

// Block returns the PCM bytes of block n, or nil if it doesn't exist yet.
// Safe for the realtime thread to call provided n*BlockBytes < Length()*FrameBytes.
func (t *Track) Block(n int) []byte {
	if n < 0 || n >= len(t.blocks) {
		return nil
	}
	return t.blocks[n].pcm
}

// moreSpace grows the block vector by one block, honoring the mlock
// request. Only the coordination thread may call this.
func (t *Track) moreSpace(ctx context.Context) error {
	rtrole.AssertNotRealtime(ctx)

	if len(t.blocks) >= MaxBlocks {
		return errs.New(errs.AllocationExhausted, "track reached maximum block count")
	}

	b := &block{pcm: make([]byte, BlockBytes)}
	if t.mlock {
		if err := unix.Mlock(b.pcm); err != nil {
			return errs.Wrap(errs.AllocationExhausted, "mlock failed", err)
		}
	}

	// No memory barrier needed: nobody reads past Length() until Commit
	// publishes it.
	t.blocks = append(t.blocks, b)
	return nil
}

// AccessPCM returns a writable region of at least one byte for incoming
// audio, growing the block vector if the current block is full.
func (t *Track) AccessPCM(ctx context.Context) ([]byte, error) {
	blockIdx := t.bytes / BlockBytes
	if blockIdx == len(t.blocks) {
		if err := t.moreSpace(ctx); err != nil {
			return nil, err
		}
	}
	fill := t.bytes % BlockBytes
	return t.blocks[blockIdx].pcm[fill:], nil
}

// Commit advances the byte counter by n and publishes any newly-completed
// whole frames via a release add on length (spec §4.B, §5 "Ordering
// guarantees"): bytes in, atomic-add after.
func (t *Track) Commit(ctx context.Context, n int) {
	rtrole.AssertNotRealtime(ctx)

	t.bytes += n
	newFrames := uint32(t.bytes/FrameBytes) - t.length.Load()
	t.length.Add(newFrames)
}

// EnsureSpace preallocates enough blocks to hold frames samples, used by
// the in-memory recording variant ahead of writing.
func (t *Track) EnsureSpace(ctx context.Context, frames int) error {
	needed := (frames + BlockFrames - 1) / BlockFrames
	for len(t.blocks) < needed {
		if err := t.moreSpace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SetLength atomically publishes a new frame count for a recording track,
// bypassing the Commit byte-accounting path.
func (t *Track) SetLength(frames uint32) {
	t.length.Store(frames)
	t.bytes = int(frames) * FrameBytes
}
