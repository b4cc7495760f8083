package trace

import (
	"github.com/ZenLiuCN/fn"
	"slices"
)

type (
	// Function of a StaticView.
	Function struct {
		Name string
		Size uint64
	}
	// Instruction of a StaticView.
	Instruction struct {
		Text    string
		Operand []string
	}
	// StaticView is a View over tables exported from a disassembler.
	StaticView struct {
		Architecture string
		Base         uint64
		Functions    map[uint64]Function
		Symbols      map[uint64]string
		Instructions map[uint64]Instruction
		Comments     map[uint64]string
	}
)

func (s *StaticView) Arch() string {
	return s.Architecture
}

func (s *StaticView) Start() uint64 {
	return s.Base
}

func (s *StaticView) FunctionAt(addr uint64) (string, bool) {
	f, ok := s.Functions[addr]
	return f.Name, ok
}

func (s *StaticView) FunctionContaining(addr uint64) (string, bool) {
	k := fn.MapKeys(s.Functions)
	slices.Sort(k)
	for _, start := range k {
		if f := s.Functions[start]; start <= addr && addr < start+f.Size {
			return f.Name, true
		}
	}
	return "", false
}

func (s *StaticView) Disassembly(addr uint64) (string, bool) {
	i, ok := s.Instructions[addr]
	return i.Text, ok
}

func (s *StaticView) Operand(addr uint64) []string {
	return s.Instructions[addr].Operand
}

func (s *StaticView) SymbolAt(addr uint64) (string, bool) {
	v, ok := s.Symbols[addr]
	return v, ok
}

func (s *StaticView) Comment(addr uint64) string {
	return s.Comments[addr]
}

func (s *StaticView) SetComment(addr uint64, comment string) {
	if s.Comments == nil {
		s.Comments = make(map[uint64]string)
	}
	s.Comments[addr] = comment
}
