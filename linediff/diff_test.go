package linediff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/linediff"
)

// assertValidDiff checks the three properties every diff must satisfy: every input
// index appears exactly once in increasing order, every output index appears exactly
// once in increasing order, and every Keep line actually matches.
func assertValidDiff(t *testing.T, a, b []int, diff []linediff.LineDiff) {
	t.Helper()
	var inputIdx, outputIdx []int
	for _, line := range diff {
		switch line.Kind {
		case linediff.Keep:
			inputIdx = append(inputIdx, line.A)
			outputIdx = append(outputIdx, line.B)
			require.Equal(t, a[line.A], b[line.B], "Keep line must match in both sequences")
		case linediff.Delete:
			inputIdx = append(inputIdx, line.A)
		case linediff.New:
			outputIdx = append(outputIdx, line.B)
		}
	}
	wantInput := make([]int, len(a))
	for i := range wantInput {
		wantInput[i] = i
	}
	wantOutput := make([]int, len(b))
	for i := range wantOutput {
		wantOutput[i] = i
	}
	require.Equal(t, wantInput, inputIdx)
	require.Equal(t, wantOutput, outputIdx)
}

func TestDiffEndsOnly(t *testing.T) {
	a := []int{1, 2, 3}
	b := []int{1, 2, 3}
	d := linediff.Diff(a, b)
	assertValidDiff(t, a, b, d)
	require.Equal(t, []linediff.LineDiff{
		{Kind: linediff.Keep, A: 0, B: 0},
		{Kind: linediff.Keep, A: 1, B: 1},
		{Kind: linediff.Keep, A: 2, B: 2},
	}, d)
}

func TestDiffShorterFirst(t *testing.T) {
	a := []int{1, 1}
	b := []int{1, 1, 1}
	d := linediff.Diff(a, b)
	assertValidDiff(t, a, b, d)
}

func TestDiffLongerFirst(t *testing.T) {
	a := []int{1, 1, 1}
	b := []int{1, 1}
	d := linediff.Diff(a, b)
	assertValidDiff(t, a, b, d)
}

func TestDiffWithUniqueAnchors(t *testing.T) {
	a := []int{1, 2, 1, 3, 1}
	b := []int{1, 3, 1, 2, 1}
	d := linediff.Diff(a, b)
	assertValidDiff(t, a, b, d)
}

func TestDiffEmptySequences(t *testing.T) {
	require.Empty(t, linediff.Diff[int](nil, nil))
}
