package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		page, size           int
		wantP, wantS, wantOf int
	}{
		{0, 0, 1, DefaultPageSize, 0},
		{2, 10, 2, 10, 10},
		{3, 500, 3, MaxPageSize, 200},
		{-1, 5, 1, 5, 0},
	}
	for _, tt := range tests {
		p, s, of := Normalize(tt.page, tt.size)
		assert.Equal(t, tt.wantP, p)
		assert.Equal(t, tt.wantS, s)
		assert.Equal(t, tt.wantOf, of)
	}
}
