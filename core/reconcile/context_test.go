package reconcile_test

import (
	"context"
	"testing"

	"rank-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
)

func TestPassID(t *testing.T) {
	_, ok := reconcile.PassID(context.Background())
	assert.False(t, ok)

	id, ok := reconcile.PassID(reconcile.WithPassID(context.Background(), "p-1"))
	assert.True(t, ok)
	assert.Equal(t, "p-1", id)

	_, ok = reconcile.PassID(reconcile.WithPassID(context.Background(), ""))
	assert.False(t, ok)
}
