package track

import (
	"context"
	"sync"

	"github.com/lodsb/turntable-core/internal/errs"
	"github.com/lodsb/turntable-core/internal/rtrole"
)

// Registry is the process-wide path → track map plus the static empty
// sentinel (spec §3 "Track registry", "Empty track"). Only the
// coordination thread may mutate it.
type Registry struct {
	mu     sync.Mutex
	byPath map[string]*Track
	empty  *Track
	mlock  bool
}

// NewRegistry returns an empty registry with its empty-track sentinel
// already seeded. mlockBlocks controls whether newly-allocated blocks on
// every track acquired through this registry are pinned into RAM.
func NewRegistry(mlockBlocks bool) *Registry {
	empty := &Track{finished: true}
	empty.refcount.Store(1)
	return &Registry{byPath: make(map[string]*Track), empty: empty, mlock: mlockBlocks}
}

// AcquireByImport looks up path in the registry; if present with a
// matching importer it increments the refcount and returns the existing
// handle, otherwise it spawns a new importer subprocess and registers the
// resulting track (spec §4.B "Acquire by import").
func (r *Registry) AcquireByImport(ctx context.Context, importer, path string, sampleRate int) (*Track, error) {
	rtrole.AssertNotRealtime(ctx)

	r.mu.Lock()
	if t, ok := r.byPath[path]; ok && t.Importer == importer {
		r.mu.Unlock()
		t.refcount.Add(1)
		return t, nil
	}
	r.mu.Unlock()

	h, err := spawnImporter(importer, path, sampleRate)
	if err != nil {
		return nil, errs.Wrap(errs.ImportFailed, "spawn importer for "+path, err)
	}

	t := &Track{
		Importer:     importer,
		Path:         path,
		SampleRate:   sampleRate,
		mlock:        r.mlock,
		importHandle: &h,
	}
	t.refcount.Store(1)

	r.mu.Lock()
	r.byPath[path] = t
	r.mu.Unlock()

	return t, nil
}

// AcquireEmpty increments and returns the static empty-track sentinel.
func (r *Registry) AcquireEmpty() *Track {
	r.empty.refcount.Add(1)
	return r.empty
}

// AcquireForRecording allocates an unregistered, path-less track ready to
// receive samples via EnsureSpace/SetLength (spec §4.B "In-memory
// recording track").
func (r *Registry) AcquireForRecording(sampleRate int) *Track {
	t := &Track{SampleRate: sampleRate, finished: true, mlock: r.mlock}
	t.refcount.Store(1)
	return t
}

// Lookup reports the registered track for path, if any, without touching
// its refcount. Exposed for tests and status reporting.
func (r *Registry) Lookup(path string) (*Track, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byPath[path]
	return t, ok
}

// Release drops one reference. If the import-hold-only threshold is hit,
// the importer is sent SIGTERM; if the count reaches zero, the track is
// removed from the registry and its blocks freed (spec §4.B "Release").
func (r *Registry) Release(ctx context.Context, t *Track) {
	rtrole.AssertNotRealtime(ctx)

	n := t.refcount.Add(-1)

	if n == 1 && t.Importing() {
		_ = t.terminate()
		return
	}

	if n == 0 {
		if t == r.empty {
			panic(errs.New(errs.ProgrammerError, "empty track refcount reached zero"))
		}
		if t.Path != "" {
			r.mu.Lock()
			delete(r.byPath, t.Path)
			r.mu.Unlock()
		}
		t.blocks = nil
	}
}
