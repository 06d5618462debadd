package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = IdentityOf("alice")
	bob   = IdentityOf("bob")
)

func strp(s string) *string { return &s }

func ids(recs []Record) []uint32 {
	out := make([]uint32, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	for _, scheme := range []IDScheme{IDSchemeCount, IDSchemeMonotonic} {
		t.Run(string(scheme), func(t *testing.T) {
			s := NewStore(scheme)
			for want := uint32(0); want < 5; want++ {
				r := s.Register(alice, "n", "l", "d")
				assert.Equal(t, want, r.ID)
			}
			assert.Equal(t, 5, s.Len())
		})
	}
}

func TestRegisterCopiesFieldsAndOwner(t *testing.T) {
	s := NewStore(IDSchemeCount)
	r := s.Register(bob, "bob", "ipfs://b", "bob's blog")
	assert.Equal(t, Record{ID: 0, Name: "bob", Link: "ipfs://b", Description: "bob's blog", CreatedBy: bob}, r)

	r.Name = "mutated"
	got, ok := s.GetByID(0)
	require.True(t, ok)
	assert.Equal(t, "bob", got.Name)
}

func TestRemoveByNonOwnerLeavesStoreUnchanged(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "a", "", "")
	s.Register(bob, "b", "", "")
	before := s.All()

	_, ok := s.Remove(alice, 1)
	assert.False(t, ok)
	assert.Equal(t, before, s.All())
}

func TestRemoveMissingIsIndistinguishable(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "a", "", "")

	missing, okMissing := s.Remove(alice, 42)
	foreign, okForeign := s.Remove(bob, 0)
	assert.Equal(t, okMissing, okForeign)
	assert.Equal(t, missing, foreign)
}

func TestRemoveByOwner(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "a0", "", "")
	s.Register(alice, "a1", "", "")
	s.Register(bob, "b2", "", "")
	s.Register(bob, "b3", "", "")

	r, ok := s.Remove(alice, 1)
	require.True(t, ok)
	assert.Equal(t, "a1", r.Name)

	_, ok = s.GetByID(1)
	assert.False(t, ok)
	for _, id := range []uint32{0, 2, 3} {
		_, ok := s.GetByID(id)
		assert.True(t, ok, "id %d", id)
	}
	// last record fills the freed slot
	assert.Equal(t, []uint32{0, 3, 2}, ids(s.All()))
}

func TestRemoveLastRecord(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "a", "", "")
	_, ok := s.Remove(alice, 0)
	require.True(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "alice", "ipfs://a", "personal site")

	r, ok := s.Update(alice, 0, Patch{Name: strp("alice2")})
	require.True(t, ok)
	assert.Equal(t, "alice2", r.Name)
	assert.Equal(t, "ipfs://a", r.Link)
	assert.Equal(t, "personal site", r.Description)

	r, ok = s.Update(alice, 0, Patch{Link: strp(""), Description: strp("new")})
	require.True(t, ok)
	assert.Equal(t, "alice2", r.Name)
	assert.Equal(t, "", r.Link)
	assert.Equal(t, "new", r.Description)
	assert.Equal(t, alice, r.CreatedBy)
}

func TestUpdateByNonOwner(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "alice", "ipfs://a", "personal site")
	before := s.All()

	_, ok := s.Update(bob, 0, Patch{Name: strp("hijack")})
	assert.False(t, ok)
	_, ok = s.Update(alice, 9, Patch{Name: strp("x")})
	assert.False(t, ok)
	assert.Equal(t, before, s.All())
}

func TestLookups(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "alice", "ipfs://a", "personal site")
	s.Register(bob, "bob", "ipfs://b", "bob's blog")
	s.Register(alice, "Alice", "ipfs://c", "aaa")
	s.Register(bob, "blog", "ipfs://d", "blogroll for bob")

	assert.Equal(t, []uint32{0}, ids(s.GetByName("alice")))
	assert.Empty(t, s.GetByName("ALICE"))

	assert.Equal(t, []uint32{1, 3}, ids(s.GetByDescription("blog")))
	assert.Equal(t, []uint32{2}, ids(s.GetByDescription("aa")))
	assert.Equal(t, []uint32{0, 1, 2, 3}, ids(s.GetByDescription("")))

	assert.Equal(t, []uint32{0, 2}, ids(s.GetByCreator(alice)))
	assert.Empty(t, s.GetByCreator(IdentityOf("carol")))

	// "blog" is in both name and description of record 3; it appears once.
	assert.Equal(t, []uint32{1, 3}, ids(s.GetByPattern("blog")))
	assert.Equal(t, []uint32{0, 1, 2, 3}, ids(s.GetByPattern("")))
}

func TestListResultsAreNeverNil(t *testing.T) {
	s := NewStore(IDSchemeCount)
	assert.NotNil(t, s.GetByName("x"))
	assert.NotNil(t, s.GetByPattern("x"))
	assert.NotNil(t, s.All())
}

// Under the count scheme, remove-then-register can hand out an id that is
// still live. The monotonic scheme never does.
func TestIDReuseAfterRemoval(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		s := NewStore(IDSchemeCount)
		for i := 0; i < 3; i++ {
			s.Register(alice, "r", "", "")
		}
		_, ok := s.Remove(alice, 1)
		require.True(t, ok)

		r := s.Register(alice, "new", "", "")
		assert.Equal(t, uint32(2), r.ID)
		assert.Equal(t, []uint32{0, 2, 2}, ids(s.All()))

		// lookups and mutations resolve to the first match
		got, ok := s.GetByID(2)
		require.True(t, ok)
		assert.Equal(t, "r", got.Name)
	})
	t.Run("monotonic", func(t *testing.T) {
		s := NewStore(IDSchemeMonotonic)
		for i := 0; i < 3; i++ {
			s.Register(alice, "r", "", "")
		}
		_, ok := s.Remove(alice, 1)
		require.True(t, ok)

		r := s.Register(alice, "new", "", "")
		assert.Equal(t, uint32(3), r.ID)
		assert.Equal(t, []uint32{0, 2, 3}, ids(s.All()))
	})
}

func TestParseIDScheme(t *testing.T) {
	for in, want := range map[string]IDScheme{
		"":           IDSchemeCount,
		"count":      IDSchemeCount,
		" Monotonic": IDSchemeMonotonic,
	} {
		got, err := ParseIDScheme(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseIDScheme("uuid")
	assert.Error(t, err)
}

func TestAllIsSnapshot(t *testing.T) {
	s := NewStore(IDSchemeCount)
	s.Register(alice, "a", "ipfs://a", "first")
	s.Register(bob, "b", "ipfs://b", "second")

	snap := s.All()
	want := []Record{
		{ID: 0, Name: "a", Link: "ipfs://a", Description: "first", CreatedBy: alice},
		{ID: 1, Name: "b", Link: "ipfs://b", Description: "second", CreatedBy: bob},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("All() mismatch (-want +got):\n%s", diff)
	}

	s.Update(alice, 0, Patch{Name: strp("renamed")})
	s.Remove(bob, 1)
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot changed after mutation (-want +got):\n%s", diff)
	}
}
