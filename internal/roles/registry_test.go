package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "colonx/pkg/domain-errors"
)

func TestRegistry_Initialize(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Initialized())

	r.Initialize("admin", "pauser", "upgrader", "minter")
	assert.True(t, r.Initialized())

	admin, ok := r.Admin()
	require.True(t, ok)
	assert.Equal(t, "admin", string(admin))

	assert.True(t, r.HasRole("minter", Minter))
	assert.True(t, r.HasRole("pauser", Pauser))
	assert.True(t, r.HasRole("upgrader", Upgrader))
	assert.False(t, r.HasRole("minter", Pauser))
	assert.False(t, r.HasRole("admin", Minter), "admin does not implicitly hold roles")
}

func TestRegistry_EnsureRole(t *testing.T) {
	r := NewRegistry()
	r.Initialize("admin", "pauser", "upgrader", "minter")

	require.NoError(t, r.EnsureRole("minter", Minter))

	err := r.EnsureRole("someone", Minter)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	err = r.EnsureRole("minter", Role("burner"))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidRole, dErrors.CodeOf(err))
}

func TestRegistry_EmptyCallerNeverAuthorized(t *testing.T) {
	r := NewRegistry()

	// Before initialization no grants exist; an empty caller must not match
	// the zero-value holder.
	err := r.EnsureRole("", Minter)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	assert.False(t, r.HasRole("", Minter))
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, Minter.Valid())
	assert.True(t, Pauser.Valid())
	assert.True(t, Upgrader.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
