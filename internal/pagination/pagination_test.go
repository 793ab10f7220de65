package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []string
	}{
		{5, 10, []string{"1", "...", "3", "4", "5", "6", "7", "...", "10"}},
		{1, 10, []string{"1", "2", "3", "4", "5", "...", "10"}},
		{10, 10, []string{"1", "...", "6", "7", "8", "9", "10"}},
		{4, 10, []string{"1", "2", "3", "4", "5", "6", "...", "10"}},
		{7, 10, []string{"1", "...", "5", "6", "7", "8", "9", "10"}},
		{3, 10, []string{"1", "2", "3", "4", "5", "...", "10"}},
		{1, 1, []string{"1"}},
		{2, 3, []string{"1", "2", "3"}},
		{3, 5, []string{"1", "2", "3", "4", "5"}},
		{3, 6, []string{"1", "2", "3", "4", "5", "6"}},
		{99, 10, []string{"1", "...", "6", "7", "8", "9", "10"}},
		{0, 10, []string{"1", "2", "3", "4", "5", "...", "10"}},
		{1, 0, []string{}},
	}

	for _, tt := range tests {
		got := Strings(Window(tt.current, tt.total))
		assert.Equal(t, tt.want, got, "Window(%d, %d)", tt.current, tt.total)
	}
}

func TestWindowIsDeterministic(t *testing.T) {
	for p := 1; p <= 20; p++ {
		assert.Equal(t, Window(p, 20), Window(p, 20))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 5))
	assert.Equal(t, 5, Clamp(9, 5))
	assert.Equal(t, 3, Clamp(3, 5))
	assert.Equal(t, 1, Clamp(3, 0))
}
