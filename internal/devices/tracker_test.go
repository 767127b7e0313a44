package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chase3718/midisensed/internal/display/displaytest"
)

func TestReconcile_FirstDevice(t *testing.T) {
	rec := &displaytest.Recorder{}
	tr := NewTracker(rec, nil)

	known, changed := tr.Reconcile([]string{"Launchkey Mini"})

	assert.True(t, changed)
	assert.Equal(t, []string{"Launchkey Mini"}, known)
	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Launchkey Mini", msgs[0].Text)
	assert.Equal(t, AddedColor, msgs[0].Color)
}

func TestReconcile_Idempotent(t *testing.T) {
	rec := &displaytest.Recorder{}
	tr := NewTracker(rec, nil)
	in := []string{"OP-1", "Launchkey Mini"}

	first, changed := tr.Reconcile(in)
	require.True(t, changed)
	rec.Reset()

	second, changed := tr.Reconcile(in)
	assert.False(t, changed)
	assert.Equal(t, first, second)
	assert.Empty(t, rec.Messages())
}

func TestReconcile_Removal(t *testing.T) {
	rec := &displaytest.Recorder{}
	tr := NewTracker(rec, nil)
	tr.Reconcile([]string{"A", "B", "C", "D"})
	rec.Reset()

	known, changed := tr.Reconcile([]string{"D", "B"})

	assert.True(t, changed)
	assert.Equal(t, []string{"B", "D"}, known, "survivors keep discovery order")
	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[0].Text)
	assert.Equal(t, RemovedColor, msgs[0].Color)
	assert.Equal(t, "C", msgs[1].Text)
}

func TestReconcile_AThenB(t *testing.T) {
	tests := []struct {
		name        string
		a, b        []string
		wantKnown   []string
		wantChanged bool
	}{
		{"same set", []string{"x", "y"}, []string{"y", "x"}, []string{"x", "y"}, false},
		{"grow", []string{"x"}, []string{"y", "x"}, []string{"x", "y"}, true},
		{"shrink", []string{"x", "y"}, []string{"y"}, []string{"y"}, true},
		{"replace", []string{"x"}, []string{"z"}, []string{"z"}, true},
		{"to empty", []string{"x"}, nil, nil, true},
		{"both empty", nil, nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(nil, nil)
			tr.Reconcile(tt.a)
			known, changed := tr.Reconcile(tt.b)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestReconcile_DuplicateInput(t *testing.T) {
	tr := NewTracker(nil, nil)

	known, changed := tr.Reconcile([]string{"OP-1", "OP-1"})

	assert.True(t, changed)
	assert.Equal(t, []string{"OP-1"}, known)
}

func TestKnown_ReturnsCopy(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Reconcile([]string{"OP-1"})

	k := tr.Known()
	k[0] = "mutated"

	assert.Equal(t, []string{"OP-1"}, tr.Known())
}
