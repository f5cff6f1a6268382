package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestForEachRunsAll(t *testing.T) {
	var n atomic.Int64
	items := make([]int, 100)
	err := ForEach(context.Background(), items, 8, func(context.Context, int) error {
		n.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if n.Load() != 100 {
		t.Fatalf("ran %d actions, want 100", n.Load())
	}
}

func TestForEachStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	items := make([]int, 1000)
	err := ForEach(context.Background(), items, 1, func(_ context.Context, i int) error {
		if i == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestMapPreservesOrder(t *testing.T) {
	items := []int{5, 3, 9, 1, 7}
	out, err := Map(context.Background(), items, 2, func(_ context.Context, v int) (string, error) {
		return fmt.Sprintf("v%d", v), nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := []string{"v5", "v3", "v9", "v1", "v7"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %q, want %q", i, out[i], want[i])
		}
	}
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Map(ctx, []int{1, 2, 3}, 0, func(_ context.Context, v int) (int, error) {
		return v, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
