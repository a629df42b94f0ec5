package linediff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	cases := []struct {
		seq  []int
		want []int
	}{
		{nil, nil},
		{[]int{0, 1, 2, 3, 4, 5, 6}, []int{0, 1, 2, 3, 4, 5, 6}},
		{[]int{6, 5, 4, 3, 2, 1, 0}, []int{6}},
	}
	for _, c := range cases {
		require.Equal(t, c.want, longestIncreasingSubsequence(c.seq))
	}
}

func TestLongestIncreasingSubsequenceIsIncreasing(t *testing.T) {
	seq := []int{5, 1, 8, 2, 9, 3, 7, 4, 6, 0}
	idx := longestIncreasingSubsequence(seq)
	for i := 1; i < len(idx); i++ {
		require.Less(t, seq[idx[i-1]], seq[idx[i]])
	}
}
