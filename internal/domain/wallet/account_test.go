package wallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFams(t *testing.T) {
	founder := uuid.New()
	f, err := NewFams("Les Fanfarons", founder)
	require.NoError(t, err)

	member, admin := f.MemberOf(founder)
	assert.True(t, member)
	assert.True(t, admin)

	_, err = NewFams("", founder)
	assert.Error(t, err)
	_, err = NewFams("Les Fanfarons", uuid.Nil)
	assert.Error(t, err)
}

func TestFamsMembership(t *testing.T) {
	founder := uuid.New()
	sansa := uuid.New()
	f, err := NewFams("Les Fanfarons", founder)
	require.NoError(t, err)

	t.Run("add and re-add", func(t *testing.T) {
		require.NoError(t, f.AddMember(sansa, false))
		assert.Error(t, f.AddMember(sansa, false))
	})

	t.Run("last admin cannot be removed", func(t *testing.T) {
		err := f.RemoveMember(founder)
		assert.Error(t, err)
	})

	t.Run("promote then remove former last admin", func(t *testing.T) {
		require.NoError(t, f.PromoteAdmin(sansa))
		require.NoError(t, f.RemoveMember(founder))
		member, admin := f.MemberOf(sansa)
		assert.True(t, member)
		assert.True(t, admin)
	})

	t.Run("removing a non-member fails", func(t *testing.T) {
		assert.Error(t, f.RemoveMember(uuid.New()))
	})
}
