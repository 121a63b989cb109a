package coord

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	fds   []uintptr
	calls atomic.Int32
}

func (h *countingHandler) PollFDs() []uintptr { return h.fds }
func (h *countingHandler) Handle(ctx context.Context) {
	h.calls.Add(1)
}

func TestRealtimeStartReturnsWithoutPriorityWhenZero(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	h := &countingHandler{fds: []uintptr{r.Fd()}}
	rt := NewRealtime(0, h)

	err = rt.Start(context.Background())
	assert.NoError(t, err)

	_, werr := w.Write([]byte{1})
	require.NoError(t, werr)

	time.Sleep(50 * time.Millisecond)
	assert.GreaterOrEqual(t, h.calls.Load(), int32(1))

	rt.Stop()
}
