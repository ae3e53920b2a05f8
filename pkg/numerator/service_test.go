package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64 // simulates DB sequence value
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	// Strict passes (key); Cached passes (key, increment).
	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := numerator.DefaultConfig("TEST")

	year := time.Now().Format("2006")

	num, err := svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("TEST-%s-00001", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("TEST-%s-00002", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := numerator.DefaultConfig("ORD")

	opts := &numerator.Options{
		Strategy:  numerator.StrategyCached,
		RangeSize: 10,
	}

	year := time.Now().Format("2006")

	// First call allocates range 1..10 (one DB round-trip).
	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("ORD-%s-00001", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to be 10, got %d", q.currentValue)
	}

	// Next nine calls come from memory.
	for i := 2; i <= 10; i++ {
		num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := fmt.Sprintf("ORD-%s-%05d", year, i); num != want {
			t.Errorf("expected %s, got %s", want, num)
		}
	}
	if q.calls != 1 {
		t.Errorf("expected 1 DB call for first 10 numbers, got %d", q.calls)
	}

	// Eleventh call triggers a new range.
	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("ORD-%s-00011", year); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.calls != 2 {
		t.Errorf("expected 2 DB calls, got %d", q.calls)
	}
}
