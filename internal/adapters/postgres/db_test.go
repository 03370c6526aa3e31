package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, isUUID(""))
	assert.False(t, isUUID("t-paris"))
	assert.False(t, isUUID("6ba7b810-9dad-11d1-80b4"))
}

func TestBlockingStatuses(t *testing.T) {
	assert.Equal(t, []string{"pending", "accepted"}, blockingStatuses())
}
