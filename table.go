package indirect

import (
	"fmt"
	"io"
)

// Entry names a slot of a Table.
type Entry uint8

const (
	FirstEntry Entry = iota
	SecondEntry
)

func (e Entry) String() string {
	switch e {
	case FirstEntry:
		return "FirstEntry"
	case SecondEntry:
		return "SecondEntry"
	default:
		return fmt.Sprintf("Entry(%d)", uint8(e))
	}
}

// Table is a fixed two slot call table. It is populated once by NewTable and never changes.
type Table struct {
	first  Callable
	second Callable
}

// NewTable create a Table with the two callables.
func NewTable(first, second Callable) Table {
	return Table{first: first, second: second}
}

// NewModuleTable create the Table of the two local module functions, which write their names to w.
func NewModuleTable(w io.Writer) Table {
	return NewTable(
		func() { _, _ = fmt.Fprintln(w, "Called module_func1") },
		func() { _, _ = fmt.Fprintln(w, "Called module_func2") },
	)
}

// Select map an index to an Entry: 0 selects FirstEntry, any other value selects SecondEntry.
func Select(index int) Entry {
	if index == 0 {
		return FirstEntry
	}
	return SecondEntry
}

// Entry returns the callable stored in slot e.
func (t Table) Entry(e Entry) Callable {
	if e == FirstEntry {
		return t.first
	}
	return t.second
}

// Lookup returns the callable selected by index, see Select.
func (t Table) Lookup(index int) Callable {
	return t.Entry(Select(index))
}

// Checked is Lookup with bounds checking, indices outside {0, 1} give ErrIndexOutOfRange.
func (t Table) Checked(index int) (Callable, error) {
	if index < 0 || index > 1 {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return t.Lookup(index), nil
}

// Invoke the callable selected by index.
func (t Table) Invoke(index int) {
	t.Lookup(index)()
}
