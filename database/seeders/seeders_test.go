package seeders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/pkg/auth"
)

func TestRunAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	st := kernel.MemoryStores()

	require.NoError(t, RunAll(ctx, st))
	require.NoError(t, RunAll(ctx, st))

	admin, err := st.Users.FindByEmail(ctx, "admin@resor.local")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.Password, "admin"))

	cats, err := st.Categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(sampleMenu))
	for _, c := range cats {
		assert.NotEmpty(t, c.Foods)
	}
}

func TestRunSelected(t *testing.T) {
	ctx := context.Background()
	st := kernel.MemoryStores()

	assert.Equal(t, []string{"admin", "menu"}, Names())
	require.Error(t, RunAll(ctx, st, "nope"))

	require.NoError(t, RunAll(ctx, st, "menu"))
	admin, err := st.Users.FindByEmail(ctx, "admin@resor.local")
	require.NoError(t, err)
	assert.Nil(t, admin)
}
