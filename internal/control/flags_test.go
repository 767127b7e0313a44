package control

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFlags_InitialState(t *testing.T) {
	f := NewFlags()
	assert.False(t, f.Done())
	assert.False(t, f.Pending())
	assert.False(t, f.TakeUpdate())
}

func TestFlags_UpdateIsEdgeTriggered(t *testing.T) {
	f := NewFlags()
	f.RequestUpdate()
	f.RequestUpdate()

	assert.True(t, f.Pending())
	assert.True(t, f.TakeUpdate())
	assert.False(t, f.TakeUpdate())
}

func TestFlags_StopIsTerminal(t *testing.T) {
	f := NewFlags()
	f.Stop()
	f.RequestUpdate()

	assert.True(t, f.Done())
	assert.True(t, f.TakeUpdate(), "refresh latches even while stopping")
	assert.True(t, f.Done())
}

func TestFlags_WakeHoldsOneToken(t *testing.T) {
	f := NewFlags()
	f.RequestUpdate()
	f.RequestUpdate()
	f.Stop()

	select {
	case <-f.Wake():
	default:
		t.Fatal("expected a wake token")
	}
	select {
	case <-f.Wake():
		t.Fatal("expected only one wake token")
	default:
	}
}

func TestDispatch(t *testing.T) {
	f := NewFlags()
	Dispatch(f, unix.SIGUSR1)
	assert.False(t, f.Done())
	assert.False(t, f.Pending())

	Dispatch(f, unix.SIGHUP)
	assert.True(t, f.Pending())
	assert.False(t, f.Done())

	Dispatch(f, os.Interrupt)
	assert.True(t, f.Done())
}

func TestInstall_DeliversSignals(t *testing.T) {
	f := NewFlags()
	uninstall := Install(f)
	defer uninstall()

	require.NoError(t, unix.Kill(os.Getpid(), RefreshSignal))
	assert.Eventually(t, f.Pending, time.Second, 5*time.Millisecond)

	require.NoError(t, unix.Kill(os.Getpid(), StopSignal))
	assert.Eventually(t, f.Done, time.Second, 5*time.Millisecond)
}

func TestName(t *testing.T) {
	assert.Equal(t, "HUP", Name(RefreshSignal))
	assert.Equal(t, "TERM", Name(StopSignal))
}
