package monitor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chase3718/midisensed/internal/control"
	"github.com/chase3718/midisensed/internal/devices"
	"github.com/chase3718/midisensed/internal/display/displaytest"
	"github.com/chase3718/midisensed/internal/logging"
	"github.com/chase3718/midisensed/internal/textgrid"
)

// scriptedSource replays results in order and repeats the last one.
type scriptedSource struct {
	mu      sync.Mutex
	calls   int
	results [][]string
	errs    []error
}

func (s *scriptedSource) List(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i], nil
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type harness struct {
	mon   *Monitor
	rec   *displaytest.Recorder
	src   *scriptedSource
	flags *control.Flags
	logs  *bytes.Buffer
	done  chan error
}

func start(t *testing.T, cfg Config, src *scriptedSource) *harness {
	t.Helper()
	h := &harness{
		rec:   &displaytest.Recorder{},
		src:   src,
		flags: control.NewFlags(),
		logs:  &bytes.Buffer{},
		done:  make(chan error, 1),
	}
	h.mon = New(cfg, src, h.rec, h.flags, logging.New(&syncWriter{w: h.logs}, true))
	go func() { h.done <- h.mon.Run(context.Background()) }()
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.flags.Stop()
	select {
	case err := <-h.done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestRun_StopBeforeFirstIteration(t *testing.T) {
	rec := &displaytest.Recorder{}
	src := &scriptedSource{}
	flags := control.NewFlags()
	flags.Stop()

	err := New(Config{}, src, rec, flags, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, src.Calls(), "no enumeration after stop")
	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, displaytest.OpClear, calls[0].Op)
	assert.Equal(t, displaytest.OpFlush, calls[1].Op)
	assert.Equal(t, displaytest.OpMessage, calls[2].Op)
	assert.Equal(t, "Bye", calls[2].Text)
	assert.Equal(t, FarewellColor, calls[2].Color)
}

func TestRun_FirstIterationDrawsOnce(t *testing.T) {
	src := &scriptedSource{results: [][]string{{"OP-1"}}}
	h := start(t, Config{Tick: 2 * time.Millisecond, RefreshTicks: 3}, src)

	// Several periodic refreshes with an unchanged set.
	require.Eventually(t, func() bool { return src.Calls() >= 4 }, 2*time.Second, time.Millisecond)
	h.stop(t)

	assert.Equal(t, []string{"OP-1"}, h.mon.Known())
	msgs := h.rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "OP-1", msgs[0].Text)
	assert.Equal(t, devices.AddedColor, msgs[0].Color)
	assert.Equal(t, "Bye", msgs[1].Text)
	// One device screen plus the shutdown clear.
	assert.Equal(t, 2, h.rec.Count(displaytest.OpClear))
}

func TestRun_EmptyStartDrawsGlyph(t *testing.T) {
	src := &scriptedSource{}
	h := start(t, Config{Tick: time.Hour}, src)

	require.Eventually(t, func() bool { return h.rec.Count(displaytest.OpFlush) >= 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, textgrid.EmptyColor, h.rec.Pixel(3, 3))
	h.stop(t)
}

func TestRun_RequestUpdateWakesLoop(t *testing.T) {
	src := &scriptedSource{results: [][]string{{"OP-1"}, {"OP-1", "Launchkey Mini"}}}
	h := start(t, Config{Tick: time.Hour}, src)

	require.Eventually(t, func() bool { return src.Calls() == 1 }, 2*time.Second, time.Millisecond)
	h.flags.RequestUpdate()
	require.Eventually(t, func() bool { return src.Calls() == 2 }, 2*time.Second, time.Millisecond)
	h.stop(t)

	assert.Equal(t, []string{"OP-1", "Launchkey Mini"}, h.mon.Known())
	// Initial screen, redraw after the change, shutdown clear.
	assert.Equal(t, 3, h.rec.Count(displaytest.OpClear))
}

func TestRun_WakeupsDoNotCountAsTicks(t *testing.T) {
	src := &scriptedSource{results: [][]string{{"OP-1"}}}
	h := start(t, Config{Tick: time.Hour, RefreshTicks: 2}, src)

	require.Eventually(t, func() bool { return src.Calls() == 1 }, 2*time.Second, time.Millisecond)
	for want := 2; want <= 5; want++ {
		h.flags.RequestUpdate()
		require.Eventually(t, func() bool { return src.Calls() == want }, 2*time.Second, time.Millisecond)
	}
	h.stop(t)

	assert.Equal(t, 5, src.Calls())
	assert.NotContains(t, h.logs.String(), "Triggering update on timer")
}

func TestRun_EnumerationFailureKeepsKnownSet(t *testing.T) {
	boom := errors.New("aconnect: exit status 1")
	src := &scriptedSource{
		results: [][]string{{"OP-1"}, nil},
		errs:    []error{nil, boom},
	}
	h := start(t, Config{Tick: time.Hour}, src)

	require.Eventually(t, func() bool { return src.Calls() == 1 }, 2*time.Second, time.Millisecond)
	h.flags.RequestUpdate()
	require.Eventually(t, func() bool { return src.Calls() == 2 }, 2*time.Second, time.Millisecond)
	h.stop(t)

	assert.Equal(t, []string{"OP-1"}, h.mon.Known())
	var texts []string
	for _, m := range h.rec.Messages() {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"OP-1", "Bye"}, texts, "a failed enumeration must not announce a removal")
	assert.Contains(t, h.logs.String(), "enumeration failed")
}

func TestRun_ContextCancelStops(t *testing.T) {
	flags := control.NewFlags()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(Config{Tick: time.Hour}, &scriptedSource{}, &displaytest.Recorder{}, flags, nil).Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
	assert.True(t, flags.Done())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Second, cfg.Tick)
	assert.Equal(t, 60, cfg.RefreshTicks)
}
