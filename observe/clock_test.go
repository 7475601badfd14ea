package observe

import (
	"sync"
	"testing"
)

func TestClockMonotonic(t *testing.T) {
	var c Clock
	prev := c.Now()
	for i := 0; i < 100; i++ {
		v := c.Next()
		if v <= prev {
			t.Fatalf("Next() = %d after %d, not monotonic", v, prev)
		}
		prev = v
	}
}

func TestClockConcurrent(t *testing.T) {
	var c Clock
	const goroutines = 16
	const perG = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				c.Next()
			}
		}()
	}
	wg.Wait()

	if got := c.Now(); got != goroutines*perG {
		t.Fatalf("Now() = %d, want %d", got, goroutines*perG)
	}
}
