package memory

import (
	"context"
	"testing"
)

func TestOrderStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewOrderStore()

	if _, ok, err := store.LoadOrder(ctx, "Alice", "HTML"); ok || err != nil {
		t.Fatalf("expected no order, got ok=%v err=%v", ok, err)
	}
	if err := store.SaveOrder(ctx, "Alice", "HTML", []int{3, 1, 2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	ids, ok, err := store.LoadOrder(ctx, "Alice", "HTML")
	if err != nil || !ok || len(ids) != 3 || ids[0] != 3 {
		t.Fatalf("unexpected order %v ok=%v err=%v", ids, ok, err)
	}
	if _, ok, _ := store.LoadOrder(ctx, "Bob", "HTML"); ok {
		t.Fatalf("orders must not leak across participants")
	}
}
