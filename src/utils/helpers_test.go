package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTicketCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewTicketCode()
		assert.NoError(t, err)
		assert.Len(t, code, 32)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestEventSlug(t *testing.T) {
	assert.Equal(t, "saturday-night-live", EventSlug("Saturday Night Live!"))
	assert.Equal(t, "cafe-con-leche", EventSlug("Café con Leche"))
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A/2/14", SeatLabel("A", 2, 14))
}
