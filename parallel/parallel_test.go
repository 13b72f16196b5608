package parallel_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/exascience/parbench"
	"github.com/exascience/parbench/parallel"
	"github.com/exascience/parbench/sequential"
)

func ExampleRange() {
	numDivisors := func(n int) int {
		var count atomic.Int64
		parallel.Range(1, n+1, runtime.GOMAXPROCS(0), func(low, high int) error {
			var sum int64
			for i := low; i < high; i++ {
				if (n % i) == 0 {
					sum++
				}
			}
			count.Add(sum)
			return nil
		})
		return int(count.Load())
	}

	fmt.Println(numDivisors(12))

	// Output:
	// 6
}

func ExampleMap() {
	pool, err := parallel.NewPool(parallel.Config{Workers: 4})
	if err != nil {
		fmt.Println(err)
		return
	}
	double := parbench.Func[int, int](func(_ context.Context, n int) (int, error) {
		return 2 * n, nil
	})
	records, err := parallel.Map[int, int](context.Background(), pool, []int{5, 3, 9, 42, 7}, double)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, rec := range records {
		fmt.Print(rec.Value, " ")
	}
	fmt.Println()

	// Output:
	// 10 6 18 84 14
}

// jittery sleeps for a random time before returning its input, so that
// workers complete out of order.
var jittery = parbench.Func[int, int](func(_ context.Context, n int) (int, error) {
	time.Sleep(time.Duration(rand.IntN(500)) * time.Microsecond)
	return n * 3, nil
})

func newPool(t *testing.T, cfg parallel.Config) *parallel.Pool {
	t.Helper()
	pool, err := parallel.NewPool(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return pool
}

func configs() map[string]parallel.Config {
	return map[string]parallel.Config{
		"cpu/dynamic": {Workers: 4, Mode: parbench.CPUBound, Schedule: parbench.Dynamic},
		"io/dynamic":  {Workers: 8, Mode: parbench.IOBound, Schedule: parbench.Dynamic},
		"cpu/static":  {Workers: 4, Mode: parbench.CPUBound, Schedule: parbench.Static},
		"io/static":   {Workers: 3, Mode: parbench.IOBound, Schedule: parbench.Static},
	}
}

func TestMapPreservesOrder(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			pool := newPool(t, cfg)
			records, err := parallel.Map[int, int](context.Background(), pool, items, jittery)
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != len(items) {
				t.Fatalf("got %d records, want %d", len(records), len(items))
			}
			for i, rec := range records {
				if rec.Index != i || rec.Value != 3*items[i] {
					t.Errorf("record %d = %+v", i, rec)
				}
			}
		})
	}
}

func TestMapMatchesSequential(t *testing.T) {
	items := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	want, err := sequential.Map[int, int](context.Background(), items, jittery)
	if err != nil {
		t.Fatal(err)
	}
	pool := newPool(t, parallel.Config{})
	got, err := parallel.Map[int, int](context.Background(), pool, items, jittery)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i].Value != want[i].Value {
			t.Errorf("index %d: parallel %d, sequential %d", i, got[i].Value, want[i].Value)
		}
	}
}

func TestMapIsolatesItemFailures(t *testing.T) {
	flaky := parbench.Func[int, int](func(_ context.Context, n int) (int, error) {
		switch n {
		case 2:
			return 0, errors.New("bad input")
		case 4:
			panic("worker blew up")
		}
		return n, nil
	})
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			pool := newPool(t, cfg)
			records, err := parallel.Map[int, int](context.Background(), pool, []int{0, 1, 2, 3, 4}, flaky)
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != 5 {
				t.Fatalf("got %d records, want 5", len(records))
			}
			for i, rec := range records {
				failed := i == 2 || i == 4
				if rec.Failed() != failed {
					t.Errorf("record %d: failed = %v, want %v (%v)", i, rec.Failed(), failed, rec.Err)
				}
				var itemErr *parbench.ItemError
				if failed && (!errors.As(rec.Err, &itemErr) || itemErr.Index != i) {
					t.Errorf("record %d: expected an item error for index %d, got %v", i, i, rec.Err)
				}
			}
		})
	}
}

func TestMapEmpty(t *testing.T) {
	pool := newPool(t, parallel.Config{Workers: 2})
	records, err := parallel.Map[int, int](context.Background(), pool, []int{}, jittery)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records for an empty batch", len(records))
	}
}

func TestMapCanceled(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			pool := newPool(t, cfg)
			ctx, cancel := context.WithCancel(context.Background())
			var calls atomic.Int32
			slow := parbench.Func[int, int](func(_ context.Context, n int) (int, error) {
				if calls.Add(1) == 2 {
					cancel()
				}
				time.Sleep(time.Millisecond)
				return n, nil
			})
			items := make([]int, 100)
			records, err := parallel.Map[int, int](ctx, pool, items, slow)
			var poolErr *parbench.PoolError
			if !errors.As(err, &poolErr) {
				t.Fatalf("expected a pool error, got %v", err)
			}
			if records != nil {
				t.Error("partial results returned alongside a pool error")
			}
			if pool.Live() != 0 {
				t.Errorf("%d workers still live after a failed batch", pool.Live())
			}
		})
	}
}

func TestNewPoolInvalid(t *testing.T) {
	var poolErr *parbench.PoolError
	if _, err := parallel.NewPool(parallel.Config{Workers: -2}); !errors.As(err, &poolErr) {
		t.Errorf("expected a pool error for a negative size, got %v", err)
	}
	if _, err := parallel.NewPool(parallel.Config{Mode: parbench.Mode(7)}); !errors.As(err, &poolErr) {
		t.Errorf("expected a pool error for an unknown mode, got %v", err)
	}
	pool, err := parallel.NewPool(parallel.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if pool.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("default pool has %d workers, want %d", pool.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestMapReleasesWorkers(t *testing.T) {
	// settle waits until the goroutine count stops dropping.
	settle := func() int {
		n := runtime.NumGoroutine()
		for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); {
			time.Sleep(5 * time.Millisecond)
			m := runtime.NumGoroutine()
			if m >= n {
				return m
			}
			n = m
		}
		return n
	}
	items := make([]int, 64)
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			pool := newPool(t, cfg)
			before := settle()
			for range 20 {
				if _, err := parallel.Map[int, int](context.Background(), pool, items, jittery); err != nil {
					t.Fatal(err)
				}
				if live := pool.Live(); live != 0 {
					t.Fatalf("%d workers still live after Map returned", live)
				}
			}
			if after := settle(); after > before+2 {
				t.Errorf("goroutines grew from %d to %d over repeated batches", before, after)
			}
		})
	}
}
