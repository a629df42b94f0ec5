package linediff

import "sort"

// longestIncreasingSubsequence returns the indices (into seq) of a longest strictly
// increasing subsequence of seq, in ascending index order.
//
// This is the "patience sorting" algorithm: maintain one pile per run of the
// process, each pile's top always the smallest value placed on it so far; place each
// element on the leftmost pile whose top it can legally sit on (found by binary
// search, since the pile tops are themselves increasing left to right), starting a
// new pile on the right if it fits none. A back-pointer recorded at placement time,
// to the top of the pile immediately to the left, lets the final answer be
// reconstructed by walking backward from the rightmost pile's top.
func longestIncreasingSubsequence(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}

	var pileTops []int                // seq[pileTops[i]] is the top of pile i.
	pointers := make([]int, len(seq)) // seq[pointers[i]] precedes seq[i] in its pile's chain.
	for i := range pointers {
		pointers[i] = -1
	}

	for elemIdx, elem := range seq {
		pileIdx := sort.Search(len(pileTops), func(i int) bool {
			return seq[pileTops[i]] >= elem
		})
		if pileIdx >= len(pileTops) {
			pileTops = append(pileTops, elemIdx)
		} else {
			pileTops[pileIdx] = elemIdx
		}
		if pileIdx > 0 {
			pointers[elemIdx] = pileTops[pileIdx-1]
		}
	}

	ret := make([]int, len(pileTops))
	idx := pileTops[len(pileTops)-1]
	for i := len(ret) - 1; i >= 0; i-- {
		ret[i] = idx
		idx = pointers[idx]
	}
	return ret
}
