package indirect

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"testing"
)

const intra = "Testing intra-module indirect calls:\nCalled module_func1\nCalled module_func2\n"

func TestDemonstrate(t *testing.T) {
	b := new(bytes.Buffer)
	Demonstrate(b, NewResolver(testRegistry(b), false, debugging), moduleTest)
	assert.Equal(t, intra+
		"\nTesting inter-module indirect calls:\n"+
		"Called external_func1\n"+
		"Called external_func2\n", b.String())
}

func TestDemonstrateAbsentModule(t *testing.T) {
	b := new(bytes.Buffer)
	Demonstrate(b, NewResolver(testRegistry(b), false, debugging), "./no_such_module.so")
	assert.Equal(t, intra, b.String())
}

func TestDemonstrateMissingSymbol(t *testing.T) {
	for _, strict := range []bool{false, true} {
		b := new(bytes.Buffer)
		Demonstrate(b, NewResolver(testRegistry(b), strict, debugging), "partial")
		assert.Equal(t, intra+
			"\nTesting inter-module indirect calls:\n"+
			"Called external_func2\n", b.String(), "strict %v", strict)
	}
}

func TestDemonstrateSymbols(t *testing.T) {
	b := new(bytes.Buffer)
	Demonstrate(b, NewResolver(testRegistry(b), false, debugging), moduleTest, "external_func2", "external_func1")
	assert.Equal(t, intra+
		"\nTesting inter-module indirect calls:\n"+
		"Called external_func2\n"+
		"Called external_func1\n", b.String())
}
