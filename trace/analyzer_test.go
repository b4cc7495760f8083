package trace

import (
	"bytes"
	"github.com/ZenLiuCN/fn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func memoryOperand() []string {
	return []string{"[", "rax", "+", "0x10", "]"}
}

func sampleView() *StaticView {
	return &StaticView{
		Architecture: Arch,
		Base:         0x100000000,
		Functions: map[uint64]Function{
			0x100000100: {"test_intra_module_call1", 0x100},
			0x100000200: {"module_func1", 0x100},
			0x100000300: {"test_inter_module_call", 0x100},
			0x100000400: {"test_intra_module_call2", 0x100},
			0x100000500: {"module_func2", 0x100},
			0x100000600: {"sub_100000600", 0x100},
			0x200000100: {"external_func1", 0x100},
		},
		Symbols: map[uint64]string{
			0x100000100: "test_intra_module_call1",
			0x100000200: "module_func1",
			0x100000800: "func_table1",
			0x100000900: "func_table2",
			0x100001000: "func_table3",
		},
		Instructions: map[uint64]Instruction{
			0x100000180: {"call [rax+0x10]", memoryOperand()},
			0x100000380: {"call rax", []string{"rax"}},
			0x100000480: {"call [rax+0x10]", memoryOperand()},
		},
	}
}

func analyze(t *testing.T, v View, branches ...int) *Analyzer {
	tr := load(t)
	a := NewAnalyzer(v, fn.Panic1(tr.Bases()))
	for _, i := range branches {
		require.NoError(t, a.Analyze(tr.Branches[i]))
	}
	a.Comments.Apply(v)
	return a
}

func TestMemoryDisplacement(t *testing.T) {
	assert.Equal(t, []string{"rax", "+", "0x10"}, MemoryDisplacement([]string{"mov", "[", "rax", "+", "0x10", "]"}))
	assert.Nil(t, MemoryDisplacement([]string{"rax"}))
	assert.Nil(t, MemoryDisplacement(nil))
}

func TestFunctionNames(t *testing.T) {
	a := NewAnalyzer(sampleView(), nil)
	name, ok := a.FunctionAt(0x100000200)
	assert.True(t, ok)
	assert.Equal(t, "module_func1", name)
	name, ok = a.FunctionContaining(0x100000250)
	assert.True(t, ok)
	assert.Equal(t, "module_func1", name)
	_, ok = a.FunctionAt(0x100000600)
	assert.False(t, ok)
	_, ok = a.FunctionContaining(0x100000650)
	assert.False(t, ok)
	_, ok = a.FunctionContaining(0x100000700)
	assert.False(t, ok)
}

func TestIntraModuleComments(t *testing.T) {
	v := sampleView()
	analyze(t, v, 0)
	assert.Equal(t, "BML_dst: 0x100000200(module_func1) (vt:0x100000800(func_table1))", v.Comment(0x100000180))
	assert.Equal(t, "BML_src: 0x100000180(test_intra_module_call1)", v.Comment(0x100000200))
}

func TestInterModuleComments(t *testing.T) {
	v := sampleView()
	analyze(t, v, 3)
	assert.Equal(t, "BML_dst: <libtest_module>.external_func1", v.Comment(0x100000380))
	assert.Len(t, v.Comments, 1)
}

func TestMultipleBranches(t *testing.T) {
	v := sampleView()
	analyze(t, v, 0, 1, 2, 3, 4)
	assert.Equal(t, "BML_src: 0x100000180(test_intra_module_call1), 0x100000480(test_intra_module_call2)", v.Comment(0x100000200))
	assert.Equal(t, "BML_dst: 0x100000200(module_func1) (vt:0x100000900(func_table2)), 0x100000500(module_func2) (vt:0x100001000(func_table3))", v.Comment(0x100000480))
	assert.Equal(t, "BML_src: 0x100000480(test_intra_module_call2)", v.Comment(0x100000500))
}

func TestExistingComment(t *testing.T) {
	v := sampleView()
	v.SetComment(0x100000200, "entry")
	analyze(t, v, 0)
	assert.Equal(t, "entry\nBML_src: 0x100000180(test_intra_module_call1)", v.Comment(0x100000200))
}

func TestNotBranchInstruction(t *testing.T) {
	v := sampleView()
	v.Instructions[0x100000180] = Instruction{Text: "nop"}
	analyze(t, v, 0)
	assert.Empty(t, v.Comments)

	v = sampleView()
	delete(v.Instructions, 0x100000180)
	analyze(t, v, 0)
	assert.Empty(t, v.Comments)
}

func TestRun(t *testing.T) {
	v := sampleView()
	require.NoError(t, Run(v, bytes.NewReader(fn.Panic1(os.ReadFile(traceFile)))))
	assert.Len(t, v.Comments, 5)

	v = sampleView()
	v.Architecture = "arm64"
	assert.ErrorIs(t, Run(v, bytes.NewReader(nil)), ErrUnsupportedArch)

	v = sampleView()
	bad := `{"modules":[{"name":"main","addr":"0x100000000"}],"branches":[
		{"before":{"module":"main","func":"a","registers":{"rip":"0x100000380"}},"after":{"module":"lib","func":"b","registers":{}}},
		{"before":{"module":"lib","func":"b","registers":{"rip":"0x10"}},"after":{"module":"lib","func":"c","registers":{}}}]}`
	assert.ErrorIs(t, Run(v, bytes.NewReader([]byte(bad))), ErrUnknownModule)
	assert.Empty(t, v.Comments)
}
