package display

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chase3718/midisensed/internal/logging"
)

type fakePort struct {
	bytes.Buffer
	closed bool
	err    error
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// frames splits the written stream back into frames.
func frames(t *testing.T, b []byte) []Frame {
	t.Helper()
	var out []Frame
	for len(b) > 0 {
		f, err := DecodeFrame(b)
		require.NoError(t, err)
		out = append(out, f)
		b = b[4+len(f.Payload)+1:]
	}
	return out
}

func TestSerial_Commands(t *testing.T) {
	port := &fakePort{}
	s := NewSerial(port, logging.New(&bytes.Buffer{}, false))
	var waited time.Duration
	s.pace = func(d time.Duration) { waited += d }

	s.Clear(Black)
	s.SetPixel(7, 0, Blue)
	s.SetPixel(8, 0, Blue) // dropped
	s.Flush()
	s.ShowMessage("OP-1", Green)

	got := frames(t, port.Bytes())
	require.Len(t, got, 4)
	assert.Equal(t, CmdClear, got[0].Cmd)
	assert.Equal(t, []byte{0, 0, 0}, got[0].Payload)
	assert.Equal(t, CmdSetPixel, got[1].Cmd)
	assert.Equal(t, []byte{7, 0, 0, 0, 255}, got[1].Payload)
	assert.Equal(t, CmdShow, got[2].Cmd)
	assert.Equal(t, CmdScroll, got[3].Cmd)
	assert.Equal(t, ScrollDuration("OP-1"), waited)

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestSerial_WriteErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	port := &fakePort{err: errors.New("device gone")}
	s := NewSerial(port, logging.New(&logs, false))

	s.Clear(Black)

	assert.Contains(t, logs.String(), "serial: write error")
	assert.Contains(t, logs.String(), "device gone")
}

func TestScrollDuration(t *testing.T) {
	assert.Equal(t, 8*50*time.Millisecond, ScrollDuration(""))
	assert.Equal(t, 4*8*50*time.Millisecond, ScrollDuration("Bye"))
}
