// Package trace reads recorded indirect branches and classifies them as intra-module or inter-module calls.
//
// A trace is a JSON document listing the load address of every module and, for each observed indirect
// branch, the register state just before and just after the branch:
//
//	{
//	  "modules":  [{"name": "main", "addr": "0x100000000"}],
//	  "branches": [{"before": {"module": "main", "func": "caller", "registers": {"rip": "0x100000180"}},
//	                "after":  {"module": "main", "func": "callee", "registers": {"rip": "0x100000200"}}}]
//	}
//
// Register values are runtime addresses. They are rebased onto the analysed binary with
// value - module load address + binary start address.
package trace

import (
	"errors"
	"fmt"
	jsoniter "github.com/json-iterator/go"
	"io"
	"strconv"
	"strings"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrMissingRegister occurs when a branch point did not record a register.
	ErrMissingRegister = errors.New("missing register")
	// ErrUnknownModule occurs when a branch point names a module absent from the trace.
	ErrUnknownModule = errors.New("unknown module")
)

// PC is the register holding the instruction address.
const PC = "rip"

type (
	// Module is a loaded module with its load address in hex.
	Module struct {
		Name string `json:"name"`
		Addr string `json:"addr"`
	}
	// Point is the state on one side of a branch.
	Point struct {
		Module    string            `json:"module"`
		Func      string            `json:"func"`
		Registers map[string]string `json:"registers"`
	}
	// Branch is one recorded indirect branch.
	Branch struct {
		Before Point `json:"before"`
		After  Point `json:"after"`
	}
	// Trace is a decoded trace document.
	Trace struct {
		Modules  []Module `json:"modules"`
		Branches []Branch `json:"branches"`
	}
	// Bases maps module names to load addresses.
	Bases map[string]uint64
)

// Kind of an indirect call.
type Kind uint8

const (
	// Intra is a call into the same module, e.g. through a local function table.
	Intra Kind = iota
	// Inter is a call into another module, e.g. a symbol resolved from a shared library.
	Inter
)

func (k Kind) String() string {
	switch k {
	case Intra:
		return "intra"
	case Inter:
		return "inter"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseHex parses a hex number with or without 0x prefix.
func ParseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return strconv.ParseUint(s, 16, 64)
}

// Parse decodes a trace document.
func Parse(r io.Reader) (t *Trace, err error) {
	t = new(Trace)
	if err = json.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return
}

// Bases of all modules of the trace.
func (t *Trace) Bases() (b Bases, err error) {
	b = make(Bases, len(t.Modules))
	for _, m := range t.Modules {
		if b[m.Name], err = ParseHex(m.Addr); err != nil {
			return nil, fmt.Errorf("module %s address %q: %w", m.Name, m.Addr, err)
		}
	}
	return
}

// Register value recorded at p.
func (p Point) Register(name string) (uint64, error) {
	v, ok := p.Registers[name]
	if !ok {
		return 0, fmt.Errorf("%w %s at %s.%s", ErrMissingRegister, name, p.Module, p.Func)
	}
	x, err := ParseHex(v)
	if err != nil {
		return 0, fmt.Errorf("register %s at %s.%s: %w", name, p.Module, p.Func, err)
	}
	return x, nil
}

// Rebase register name of p onto a binary starting at start.
func (p Point) Rebase(name string, bases Bases, start uint64) (uint64, error) {
	v, err := p.Register(name)
	if err != nil {
		return 0, err
	}
	base, ok := bases[p.Module]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModule, p.Module)
	}
	return v - base + start, nil
}

// Kind of the branch: Intra when both sides are in the same module.
func (b Branch) Kind() Kind {
	if b.Before.Module == b.After.Module {
		return Intra
	}
	return Inter
}

// Call is a classified branch with rebased instruction addresses.
type Call struct {
	Kind        Kind
	Branch      Branch
	Source      uint64 //address of the branch instruction
	Destination uint64 //address of the branch target, only meaningful for Intra calls
}

func (c Call) String() string {
	b, a := c.Branch.Before, c.Branch.After
	if c.Kind == Inter {
		return fmt.Sprintf("%s %s.%s %#x -> <%s>.%s", c.Kind, b.Module, b.Func, c.Source, a.Module, a.Func)
	}
	return fmt.Sprintf("%s %s.%s %#x -> %s.%s %#x", c.Kind, b.Module, b.Func, c.Source, a.Module, a.Func, c.Destination)
}

// Calls classifies every branch and rebases its addresses onto a binary starting at start.
func (t *Trace) Calls(start uint64) (v []Call, err error) {
	var b Bases
	if b, err = t.Bases(); err != nil {
		return
	}
	v = make([]Call, 0, len(t.Branches))
	for _, br := range t.Branches {
		c := Call{Kind: br.Kind(), Branch: br}
		if c.Source, err = br.Before.Rebase(PC, b, start); err != nil {
			return nil, err
		}
		if c.Kind == Intra {
			if c.Destination, err = br.After.Rebase(PC, b, start); err != nil {
				return nil, err
			}
		}
		v = append(v, c)
	}
	return
}
