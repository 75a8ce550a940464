package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ann", NormalizeName("  AnN "))
	assert.Equal(t, "CSE", NormalizeBranch(" cse\t"))
	assert.Equal(t, "9999999123", NormalizePhone(" 9999999123\n"))
}
