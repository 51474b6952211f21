package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForAction(t *testing.T) {
	a := ForAction("o1", "update_status", "shipped")
	assert.Equal(t, a, ForAction("o1", "update_status", "shipped"))
	assert.NotEqual(t, a, ForAction("o1", "update_status", "delivered"))
	assert.NotEqual(t, a, ForAction("o2", "update_status", "shipped"))
	assert.Len(t, a, 36)
}
