package trace

import (
	"errors"
	"fmt"
	"github.com/ZenLiuCN/fn"
	"io"
	"log"
	"slices"
	"strings"
)

// Arch is the only supported architecture.
const Arch = "x86_64"

// ErrUnsupportedArch occurs when the analysed binary is not Arch.
var ErrUnsupportedArch = errors.New("only x86_64 binaries are supported")

const (
	// DestinationPrefix starts comments placed on a branch instruction, they list its targets.
	DestinationPrefix = "BML_dst: "
	// SourcePrefix starts comments placed on a branch target, they list the branches reaching it.
	SourcePrefix = "BML_src: "
)

// View is the disassembled binary being annotated.
type View interface {
	Arch() string
	Start() uint64                                 //address the binary is mapped at
	FunctionAt(addr uint64) (string, bool)         //function starting at addr
	FunctionContaining(addr uint64) (string, bool) //first function whose body contains addr
	Disassembly(addr uint64) (string, bool)        //instruction text at addr
	Operand(addr uint64) []string                  //tokens of the first operand of the instruction at addr
	SymbolAt(addr uint64) (string, bool)
	Comment(addr uint64) string
	SetComment(addr uint64, comment string)
}

// Comments collects annotations per address, duplicates are kept once.
type Comments struct {
	source      map[uint64]map[string]struct{}
	destination map[uint64]map[string]struct{}
}

func NewComments() *Comments {
	return &Comments{
		source:      make(map[uint64]map[string]struct{}),
		destination: make(map[uint64]map[string]struct{}),
	}
}

func add(m map[uint64]map[string]struct{}, addr uint64, c string) {
	s, ok := m[addr]
	if !ok {
		s = make(map[string]struct{})
		m[addr] = s
	}
	s[c] = struct{}{}
}

// AddSource annotates a branch instruction with one of its targets.
func (c *Comments) AddSource(addr uint64, comment string) {
	add(c.source, addr, comment)
}

// AddDestination annotates a branch target with one of its callers.
func (c *Comments) AddDestination(addr uint64, comment string) {
	add(c.destination, addr, comment)
}

// Apply writes the collected comments to v, after any existing comment.
func (c *Comments) Apply(v View) {
	apply(v, DestinationPrefix, c.source)
	apply(v, SourcePrefix, c.destination)
}

func apply(v View, prefix string, m map[uint64]map[string]struct{}) {
	for addr, set := range m {
		s := fn.MapKeys(set)
		slices.Sort(s)
		joined := prefix + strings.Join(s, ", ")
		if old := v.Comment(addr); old != "" {
			joined = old + "\n" + joined
		}
		v.SetComment(addr, joined)
	}
}

// MemoryDisplacement returns the tokens between the first pair of brackets, nil if there are none.
func MemoryDisplacement(tokens []string) (v []string) {
	start := false
	for _, t := range tokens {
		switch {
		case t == "[":
			start = true
		case t == "]":
			return
		case start:
			v = append(v, t)
		}
	}
	return
}

// Analyzer annotates a View with recorded branches.
type Analyzer struct {
	view     View
	bases    Bases
	Comments *Comments
}

// NewAnalyzer create an Analyzer of v with module load addresses bases.
func NewAnalyzer(v View, bases Bases) *Analyzer {
	return &Analyzer{view: v, bases: bases, Comments: NewComments()}
}

func named(name string, ok bool) (string, bool) {
	if !ok || strings.HasPrefix(name, "sub") {
		return "", false
	}
	return name, true
}

// FunctionAt the name of a function starting at addr, auto named functions are ignored.
func (a *Analyzer) FunctionAt(addr uint64) (string, bool) {
	return named(a.view.FunctionAt(addr))
}

// FunctionContaining the name of the function containing addr, auto named functions are ignored.
func (a *Analyzer) FunctionContaining(addr uint64) (string, bool) {
	return named(a.view.FunctionContaining(addr))
}

// Analyze records the comments of one branch.
//
// A branch into another module annotates its source with <module>.func.
// A branch inside the module annotates both sides, and only when the source is a call or jmp instruction.
func (a *Analyzer) Analyze(b Branch) error {
	src, err := b.Before.Rebase(PC, a.bases, a.view.Start())
	if err != nil {
		return err
	}
	if b.Kind() == Inter {
		a.Comments.AddSource(src, fmt.Sprintf("<%s>.%s", b.After.Module, b.After.Func))
		return nil
	}
	if !a.indirect(src) {
		return nil
	}
	dst, err := b.After.Rebase(PC, a.bases, a.view.Start())
	if err != nil {
		return err
	}
	comment := fmt.Sprintf("%#x", dst)
	if name, ok := a.FunctionAt(dst); ok {
		comment += "(" + name + ")"
	}
	if comment, err = a.vtable(b.Before, src, comment); err != nil {
		return err
	}
	a.Comments.AddSource(src, comment)

	comment = fmt.Sprintf("%#x", src)
	if name, ok := a.FunctionContaining(src); ok {
		comment += "(" + name + ")"
	}
	a.Comments.AddDestination(dst, comment)
	return nil
}

func (a *Analyzer) indirect(addr uint64) bool {
	ins, ok := a.view.Disassembly(addr)
	if !ok {
		log.Printf("Cannot get instruction @ %#x", addr)
		return false
	}
	if !strings.HasPrefix(ins, "call") && !strings.HasPrefix(ins, "jmp") {
		log.Printf("%s @ %#x is not an indirect branch instruction", ins, addr)
		return false
	}
	return true
}

// vtable appends the symbol of the table the branch read its target from, if any.
func (a *Analyzer) vtable(before Point, src uint64, comment string) (string, error) {
	disp := MemoryDisplacement(a.view.Operand(src))
	if len(disp) == 0 {
		return comment, nil
	}
	table, err := before.Rebase(disp[0], a.bases, a.view.Start())
	if err != nil {
		return comment, err
	}
	if sym, ok := a.view.SymbolAt(table); ok {
		comment += fmt.Sprintf(" (vt:%#x(%s))", table, sym)
	}
	return comment, nil
}

// Run parses a trace from r, analyzes every branch and applies the comments to v.
// Nothing is applied when any branch fails.
func Run(v View, r io.Reader) (err error) {
	if v.Arch() != Arch {
		return ErrUnsupportedArch
	}
	var t *Trace
	if t, err = Parse(r); err != nil {
		return
	}
	var b Bases
	if b, err = t.Bases(); err != nil {
		return
	}
	a := NewAnalyzer(v, b)
	for _, br := range t.Branches {
		if err = a.Analyze(br); err != nil {
			return
		}
	}
	a.Comments.Apply(v)
	return
}
