package track

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/lodsb/turntable-core/internal/errs"
	"github.com/lodsb/turntable-core/internal/rtrole"
	"github.com/lodsb/turntable-core/internal/status"
)

// importHandle holds the subprocess plumbing for a track that is still
// streaming PCM in. A pty stands in for the original's non-blocking pipe
// (spec §4.B "async decode via an external importer subprocess pipe"; see
// DESIGN.md for why a pty rather than a plain os.Pipe).
type importHandle struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

// spawnImporter starts `<importer> import <path> <sampleRate>`, piping its
// stdout (interleaved s16 stereo PCM) through a pty master we read from.
func spawnImporter(importer, path string, sampleRate int) (importHandle, error) {
	cmd := exec.Command(importer, "import", path, strconv.Itoa(sampleRate))
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return importHandle{}, err
	}
	return importHandle{cmd: cmd, ptmx: ptmx}, nil
}

// PollFD returns the file the coordination thread should add to its poll
// set while this track is importing, and whether importing is still live.
func (t *Track) PollFD() (*os.File, bool) {
	if t.importHandle == nil {
		return nil, false
	}
	return t.importHandle.ptmx, t.Importing()
}

// Handle is called by the coordination thread whenever this track's poll
// slot is readable. It reads into the PCM buffer until no more data is
// immediately available or the importer has finished (spec §4.B "Import
// pump").
func (t *Track) Handle(ctx context.Context, sink status.Sink) {
	rtrole.AssertNotRealtime(ctx)

	if !t.Importing() {
		return
	}

	for {
		pcm, err := t.AccessPCM(ctx)
		if err != nil {
			// AllocationExhausted: halt growth, leave track playable up to
			// its current length; wait for the next readiness notification.
			return
		}

		// A zero-value read deadline forces an immediate, non-blocking
		// attempt -- the pty-backed equivalent of checking for EAGAIN.
		_ = t.importHandle.ptmx.SetReadDeadline(time.Now())
		n, rerr := t.importHandle.ptmx.Read(pcm)
		if n > 0 {
			t.Commit(ctx, n)
		}
		if rerr != nil {
			if errors.Is(rerr, os.ErrDeadlineExceeded) {
				return
			}
			t.stopImport(ctx, sink)
			return
		}
	}
}

// stopImport closes the pipe, reaps the child, and marks the track
// finished or reports an import error (spec §4.B "On EOF...").
func (t *Track) stopImport(ctx context.Context, sink status.Sink) {
	rtrole.AssertNotRealtime(ctx)

	_ = t.importHandle.ptmx.Close()
	waitErr := t.importHandle.cmd.Wait()

	if waitErr == nil {
		t.finished = true
		return
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && t.terminated {
		// Expected: we sent SIGTERM ourselves to end an unneeded import.
		t.finished = true
		return
	}

	if sink != nil {
		sink.Status(status.Message{Level: status.Alert, Text: fmt.Sprintf("Error importing %s", t.Path)})
	}
	t.finished = true
}

// terminate requests early termination of a still-importing track whose
// only remaining reference is the import hold itself.
func (t *Track) terminate() error {
	if t.importHandle == nil || t.importHandle.cmd.Process == nil {
		return errs.New(errs.ProgrammerError, "terminate called on a non-importing track")
	}
	if err := t.importHandle.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	t.terminated = true
	return nil
}
