package mmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jneem/ojo/mmap"
)

// intKey is a minimal Ordered wrapper so the tests don't depend on identity.
type intKey int

func (a intKey) Compare(b intKey) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type MultimapSuite struct {
	suite.Suite
	m *mmap.Multimap[intKey, intKey]
}

func (s *MultimapSuite) SetupTest() {
	s.m = mmap.New[intKey, intKey]()
}

func collect(seq func(func(intKey) bool)) []intKey {
	var out []intKey
	seq(func(v intKey) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (s *MultimapSuite) TestInsertAndGet() {
	require := require.New(s.T())

	require.True(s.m.Insert(1, 10))
	require.True(s.m.Insert(1, 30))
	require.True(s.m.Insert(1, 20))
	require.False(s.m.Insert(1, 10), "re-inserting an existing pair is a no-op")

	require.Equal([]intKey{10, 20, 30}, collect(s.m.Get(1)), "values come back sorted")
	require.Equal(3, s.m.Count(1))
	require.Equal(3, s.m.Len())
}

func (s *MultimapSuite) TestGetMissingKeyIsEmpty() {
	require.Empty(s.T(), collect(s.m.Get(99)))
}

func (s *MultimapSuite) TestGetFrom() {
	require := require.New(s.T())
	for _, v := range []intKey{10, 20, 30, 40} {
		s.m.Insert(1, v)
	}
	require.Equal([]intKey{20, 30, 40}, collect(s.m.GetFrom(1, 20)))
	require.Equal([]intKey{20, 30, 40}, collect(s.m.GetFrom(1, 15)), "GetFrom starts at the first value >= from")
	require.Empty(collect(s.m.GetFrom(1, 100)))
}

func (s *MultimapSuite) TestRemove() {
	require := require.New(s.T())
	s.m.Insert(1, 10)
	s.m.Insert(1, 20)

	require.True(s.m.Remove(1, 10))
	require.False(s.m.Remove(1, 10), "removing twice reports false the second time")
	require.Equal([]intKey{20}, collect(s.m.Get(1)))

	require.True(s.m.Remove(1, 20))
	require.False(s.m.ContainsKey(1), "an emptied bucket drops the key entirely")
}

func (s *MultimapSuite) TestRemoveAll() {
	require := require.New(s.T())
	s.m.Insert(1, 10)
	s.m.Insert(1, 20)
	s.m.Insert(2, 30)

	require.True(s.m.RemoveAll(1))
	require.False(s.m.ContainsKey(1))
	require.True(s.m.ContainsKey(2))
	require.False(s.m.RemoveAll(1), "RemoveAll on an absent key reports false")
}

func (s *MultimapSuite) TestKeysAndAllAreOrdered() {
	require := require.New(s.T())
	s.m.Insert(3, 1)
	s.m.Insert(1, 1)
	s.m.Insert(2, 1)
	s.m.Insert(1, 2)

	var keys []intKey
	for k := range s.m.Keys() {
		keys = append(keys, k)
	}
	require.Equal([]intKey{1, 2, 3}, keys)

	type pair struct{ k, v intKey }
	var pairs []pair
	for k, v := range s.m.All() {
		pairs = append(pairs, pair{k, v})
	}
	require.Equal([]pair{{1, 1}, {1, 2}, {2, 1}, {3, 1}}, pairs)
}

func TestMultimapSuite(t *testing.T) {
	suite.Run(t, new(MultimapSuite))
}
