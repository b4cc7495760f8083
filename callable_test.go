package indirect

import (
	"github.com/stretchr/testify/assert"
	"reflect"
	"testing"
)

func answer() int {
	return 42
}

func TestAs(t *testing.T) {
	p := reflect.ValueOf(answer).Pointer()
	f := As[func() int](p)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 42, f())
	}
}
