package utils

import (
	// Go Internal Packages
	"testing"

	// External Packages
	"github.com/stretchr/testify/assert"
)

func TestJoinInt32Slice(t *testing.T) {
	in := []int32{4, 0, 1}
	assert.Equal(t, "0,1,4", JoinInt32Slice(in))
	assert.Equal(t, []int32{4, 0, 1}, in)
	assert.Equal(t, "", JoinInt32Slice(nil))
}

func TestDefaultUser(t *testing.T) {
	t.Setenv("USER", "ada")
	assert.Equal(t, "ada", DefaultUser())

	t.Setenv("USER", "")
	assert.NotEmpty(t, DefaultUser())
}
