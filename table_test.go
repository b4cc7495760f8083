package indirect

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		index int
		want  Entry
	}{
		{0, FirstEntry},
		{1, SecondEntry},
		{2, SecondEntry},
		{-1, SecondEntry},
		{1 << 20, SecondEntry},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Select(tt.index), "index %d", tt.index)
	}
}

func TestModuleTable(t *testing.T) {
	b := new(bytes.Buffer)
	table := NewModuleTable(b)
	table.Invoke(0)
	assert.Equal(t, "Called module_func1\n", b.String())
	b.Reset()
	table.Invoke(1)
	assert.Equal(t, "Called module_func2\n", b.String())
	b.Reset()
	table.Invoke(0)
	table.Invoke(0)
	assert.Equal(t, "Called module_func1\nCalled module_func1\n", b.String())
}

func TestLookupFallback(t *testing.T) {
	var calls []Entry
	table := NewTable(
		func() { calls = append(calls, FirstEntry) },
		func() { calls = append(calls, SecondEntry) },
	)
	for _, i := range []int{2, 3, -7, 100} {
		table.Lookup(i)()
	}
	assert.Equal(t, []Entry{SecondEntry, SecondEntry, SecondEntry, SecondEntry}, calls)
}

func TestChecked(t *testing.T) {
	b := new(bytes.Buffer)
	table := NewModuleTable(b)
	c, err := table.Checked(1)
	require.NoError(t, err)
	c()
	assert.Equal(t, "Called module_func2\n", b.String())
	for _, i := range []int{-1, 2} {
		_, err = table.Checked(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestEntryString(t *testing.T) {
	assert.Equal(t, "FirstEntry", FirstEntry.String())
	assert.Equal(t, "SecondEntry", SecondEntry.String())
	assert.Equal(t, "Entry(9)", Entry(9).String())
}
