package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTY_NonFileWriterIsFalse(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))
}
