package partition_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jneem/ojo/partition"
)

type intElem int

func (a intElem) Compare(b intElem) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func collectPart(seq func(func(intElem) bool)) []int {
	var out []int
	seq(func(v intElem) bool {
		out = append(out, int(v))
		return true
	})
	sort.Ints(out)
	return out
}

func countParts(p *partition.Partition[intElem]) int {
	n := 0
	for range p.IterParts() {
		n++
	}
	return n
}

type PartitionSuite struct {
	suite.Suite
	p *partition.Partition[intElem]
}

func (s *PartitionSuite) SetupTest() {
	s.p = partition.New[intElem]()
	for _, e := range []intElem{0, 1, 2, 3, 4} {
		s.p.Insert(e)
	}
}

func (s *PartitionSuite) TestInsertRejectsDuplicate() {
	require.Panics(s.T(), func() { s.p.Insert(0) })
}

func (s *PartitionSuite) TestMergeAndSamePart() {
	require := require.New(s.T())
	require.Equal(5, countParts(s.p))

	require.True(s.p.Merge(0, 4))
	require.Equal(4, countParts(s.p))
	require.False(s.p.Merge(0, 4), "merging an already-merged pair reports false")
	require.True(s.p.SamePart(0, 4))
	require.Equal([]int{0, 4}, collectPart(s.p.IterPart(0)))
	require.Equal([]int{0, 4}, collectPart(s.p.IterPart(4)))

	require.True(s.p.Merge(1, 2))
	require.Equal(3, countParts(s.p))
	require.True(s.p.SamePart(1, 2))

	require.True(s.p.Merge(2, 4))
	require.Equal(2, countParts(s.p))
	for _, elt := range []intElem{0, 1, 2, 4} {
		require.Equal([]int{0, 1, 2, 4}, collectPart(s.p.IterPart(elt)))
	}
}

func (s *PartitionSuite) TestRemovePart() {
	require := require.New(s.T())
	s.p.Merge(0, 4)
	s.p.Merge(1, 2)
	s.p.Merge(2, 4)

	s.p.RemovePart(1)
	require.Equal(1, countParts(s.p))
	require.Equal([]int{3}, collectPart(s.p.IterPart(3)))
}

func TestPartitionSuite(t *testing.T) {
	suite.Run(t, new(PartitionSuite))
}
