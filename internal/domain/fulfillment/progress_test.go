package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

func q(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineProgress
		want  Progress
	}{
		{"no lines", nil, ProgressNone},
		{"nothing fulfilled", []LineProgress{{q(10), q(0)}, {q(5), q(0)}}, ProgressNone},
		{"first line covered", []LineProgress{{q(10), q(10)}, {q(5), q(0)}}, ProgressPartial},
		{"partial on one line", []LineProgress{{q(10), q(3)}}, ProgressPartial},
		{"all covered", []LineProgress{{q(10), q(10)}, {q(5), q(5)}}, ProgressComplete},
		{"over-fulfilled counts as covered", []LineProgress{{q(10), q(12)}}, ProgressComplete},
		{"zero-required line is covered", []LineProgress{{q(0), q(0)}, {q(5), q(5)}}, ProgressComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Resolve(tt.lines))
		})
	}
}

func TestStatusWording(t *testing.T) {
	require.Equal(t, entity.PurchaseOrderPending, PurchaseOrderStatus(ProgressNone))
	require.Equal(t, entity.PurchaseOrderPartiallyReceived, PurchaseOrderStatus(ProgressPartial))
	require.Equal(t, entity.PurchaseOrderReceived, PurchaseOrderStatus(ProgressComplete))

	require.Equal(t, entity.SalesOrderPending, SalesOrderStatus(ProgressNone))
	require.Equal(t, entity.SalesOrderProcessed, SalesOrderStatus(ProgressPartial))
	require.Equal(t, entity.SalesOrderCompleted, SalesOrderStatus(ProgressComplete))
}

// memoryRepo simulates an order with two lines and accumulating
// receipts against them.
type memoryRepo struct {
	required  []types.Quantity
	fulfilled []types.Quantity

	poStatus entity.PurchaseOrderStatus
	soStatus entity.SalesOrderStatus
}

func (r *memoryRepo) progress() []LineProgress {
	lines := make([]LineProgress, len(r.required))
	for i := range r.required {
		lines[i] = LineProgress{Required: r.required[i], Fulfilled: r.fulfilled[i]}
	}
	return lines
}

func (r *memoryRepo) GetPurchaseOrderProgress(context.Context, id.ID) ([]LineProgress, error) {
	return r.progress(), nil
}

func (r *memoryRepo) SetPurchaseOrderStatus(_ context.Context, _ id.ID, status entity.PurchaseOrderStatus) error {
	r.poStatus = status
	return nil
}

func (r *memoryRepo) GetSalesOrderProgress(context.Context, id.ID) ([]LineProgress, error) {
	return r.progress(), nil
}

func (r *memoryRepo) SetSalesOrderStatus(_ context.Context, _ id.ID, status entity.SalesOrderStatus) error {
	r.soStatus = status
	return nil
}

func TestRecomputePurchaseOrder_PartialThenComplete(t *testing.T) {
	repo := &memoryRepo{
		required:  []types.Quantity{q(10), q(5)},
		fulfilled: []types.Quantity{q(0), q(0)},
	}
	svc := NewService(repo)
	ctx := context.Background()
	orderID := id.New()

	// Receipt of (10, 0)
	repo.fulfilled = []types.Quantity{q(10), q(0)}
	status, err := svc.RecomputePurchaseOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, entity.PurchaseOrderPartiallyReceived, status)
	require.Equal(t, entity.PurchaseOrderPartiallyReceived, repo.poStatus)

	// Completing receipt of (0, 5)
	repo.fulfilled = []types.Quantity{q(10), q(5)}
	status, err = svc.RecomputePurchaseOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, entity.PurchaseOrderReceived, status)
	require.Equal(t, entity.PurchaseOrderReceived, repo.poStatus)
}

func TestRecomputeSalesOrder(t *testing.T) {
	repo := &memoryRepo{
		required:  []types.Quantity{q(4)},
		fulfilled: []types.Quantity{q(2)},
	}
	svc := NewService(repo)

	status, err := svc.RecomputeSalesOrder(context.Background(), id.New())
	require.NoError(t, err)
	require.Equal(t, entity.SalesOrderProcessed, status)

	repo.fulfilled = []types.Quantity{q(4)}
	status, err = svc.RecomputeSalesOrder(context.Background(), id.New())
	require.NoError(t, err)
	require.Equal(t, entity.SalesOrderCompleted, status)
}
