package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent_TracksBytesNotChunkCount(t *testing.T) {
	// Two of three chunks received, but the received chunks carry 150 of
	// 200 declared bytes: progress is 75%, not two thirds.
	assert.InDelta(t, 75.0, progressPercent(150, 200), 0.001)
}

func TestProgressPercent_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, progressPercent(0, 200))
	assert.InDelta(t, 100.0, progressPercent(200, 200), 0.001)
	// Unknown declared size never divides by zero.
	assert.Equal(t, 0.0, progressPercent(150, 0))
}
