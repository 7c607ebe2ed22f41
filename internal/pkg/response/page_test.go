package response

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, strconv.Itoa, 1, 2, 5)
	assert.Equal(t, []string{"1", "2"}, p.Items)
	assert.True(t, p.HasMore)

	last := NewPage([]int{5}, strconv.Itoa, 3, 2, 5)
	assert.False(t, last.HasMore)

	empty := NewPage[int, string](nil, strconv.Itoa, 1, 20, 0)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}
