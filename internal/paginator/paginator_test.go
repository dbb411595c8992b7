package paginator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestThirteenItemsSplitTenAndThree(t *testing.T) {
	items := ints(13)

	first := Paginate(items, DefaultPageSize, 1)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextNumber())

	second := Paginate(items, DefaultPageSize, 2)
	assert.Equal(t, []int{11, 12, 13}, second.Items)
	assert.False(t, second.HasNext())
	assert.True(t, second.HasPrevious())
	assert.Equal(t, 1, second.PreviousNumber())
	assert.Equal(t, 11, second.StartIndex())
}

func TestPagesCoverEveryItemOnce(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 20, 37} {
		for _, size := range []int{1, 3, 10} {
			items := ints(n)
			first := Paginate(items, size, 1)

			var seen []int
			for page := 1; page <= first.TotalPages; page++ {
				p := Paginate(items, size, page)
				assert.LessOrEqual(t, len(p.Items), size)
				seen = append(seen, p.Items...)
			}

			if n == 0 {
				assert.Empty(t, seen)
				assert.Equal(t, 1, first.TotalPages)
				continue
			}
			assert.Equal(t, items, seen, "n=%d size=%d", n, size)
		}
	}
}

func TestOutOfRangeClamps(t *testing.T) {
	items := ints(13)

	tests := []struct {
		name   string
		number int
		want   int
	}{
		{"zero", 0, 1},
		{"negative", -4, 1},
		{"past end", 99, 2},
		{"last", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(items, 10, tt.number).Number)
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1, ParseNumber(""))
	assert.Equal(t, 1, ParseNumber("abc"))
	assert.Equal(t, 1, ParseNumber("1.5"))
	assert.Equal(t, 3, ParseNumber(" 3 "))
	assert.Equal(t, -2, ParseNumber("-2"))
}

func TestHugePageNumbersClampToEnds(t *testing.T) {
	assert.Equal(t, math.MaxInt, ParseNumber("99999999999999999999"))
	assert.Equal(t, math.MinInt, ParseNumber("-99999999999999999999"))

	assert.Equal(t, 2, NewWindow(13, 10, ParseNumber("99999999999999999999")).Number)
	assert.Equal(t, 1, NewWindow(13, 10, ParseNumber("-99999999999999999999")).Number)
}

func TestEmptyListingHasOneEmptyPage(t *testing.T) {
	page := Paginate([]string{}, 10, 5)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasOtherPages())
	assert.Equal(t, 0, page.StartIndex())
	assert.Equal(t, []int{1}, page.PageRange())
}

func TestWindowOffsets(t *testing.T) {
	w := NewWindow(13, 10, 2)
	assert.Equal(t, 10, w.Offset)
	assert.Equal(t, 3, w.Limit)

	w = NewWindow(13, 10, 7)
	assert.Equal(t, 2, w.Number)
	assert.Equal(t, 10, w.Offset)

	w = NewWindow(0, 10, 1)
	assert.Equal(t, 0, w.Offset)
	assert.Equal(t, 0, w.Limit)
}

func TestNonPositivePageSize(t *testing.T) {
	page := Paginate(ints(3), 0, 2)
	assert.Equal(t, 1, page.PageSize)
	assert.Equal(t, []int{2}, page.Items)
}
