package services_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resor-app/resor/app/repositories/memory"
	"github.com/resor-app/resor/app/services"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestGenerateVoucherCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := services.GenerateVoucherCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
	}
}

func TestVoucherCreateAndList(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := services.NewVoucherService(st.Vouchers)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	v, err := svc.Create(ctx, 25)
	require.NoError(t, err)
	assert.Regexp(t, codePattern, v.Code)
	assert.Equal(t, 25.0, v.Discount)
	assert.False(t, v.IsUsed)

	list, _ = svc.List(ctx)
	assert.Len(t, list, 1)
}
