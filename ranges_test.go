package tree_sitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/itsaky/go-tree-sitter-android"
)

func simpleRange(start, end int) Range {
	return Range{
		StartByte:  uint(start),
		EndByte:    uint(end),
		StartPoint: NewPoint(0, uint(start)),
		EndPoint:   NewPoint(0, uint(end)),
	}
}

func TestValidateRanges(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRanges(nil))
	assert.NoError(t, ValidateRanges([]Range{simpleRange(4, 4)}))
	assert.NoError(t, ValidateRanges([]Range{simpleRange(0, 5), simpleRange(5, 10), simpleRange(12, 20)}))

	// Ranges are not ordered
	err := ValidateRanges([]Range{simpleRange(23, 29), simpleRange(0, 5), simpleRange(50, 60)})
	assert.Equal(t, &IncludedRangesError{1}, err)
	assert.ErrorIs(t, err, ErrRejectedRanges)

	// Range ends before it starts
	err = ValidateRanges([]Range{simpleRange(10, 5)})
	assert.Equal(t, &IncludedRangesError{0}, err)

	// Overlap
	err = ValidateRanges([]Range{simpleRange(0, 10), simpleRange(20, 30), simpleRange(25, 40)})
	assert.Equal(t, &IncludedRangesError{2}, err)
	assert.EqualError(t, err, "Incorrect range by index: 2")
}

func TestCloneRanges(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Range{}, CloneRanges(nil))

	original := []Range{simpleRange(0, 2), simpleRange(4, 6)}
	clone := CloneRanges(original)
	assert.Equal(t, original, clone)

	clone[0].EndByte = 3
	assert.Equal(t, uint(2), original[0].EndByte)
}
