package ring

import (
	"sync"
	"testing"
	"time"
)

func TestNewRejectsBadCapacity(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatalf("expected error for zero capacity")
	}
	if _, err := New(-4); err == nil {
		t.Fatalf("expected error for negative capacity")
	}
}

func TestProduceConsumeOrder(t *testing.T) {
	r, err := New(8)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in := []complex64{1, 2, 3, 4, 5}
	r.Produce(in)
	if r.Len() != 5 {
		t.Fatalf("expected 5 buffered, got %d", r.Len())
	}
	dst := make([]complex64, 8)
	n, ok := r.Consume(dst)
	if !ok || n != 5 {
		t.Fatalf("consume returned n=%d ok=%v", n, ok)
	}
	for i, want := range in {
		if dst[i] != want {
			t.Fatalf("sample %d: got %v want %v", i, dst[i], want)
		}
	}
}

func TestProducerBlocksUntilConsumed(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		r.Produce([]complex64{1, 2, 3, 4, 5, 6})
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("producer should have blocked on a full ring")
	case <-time.After(20 * time.Millisecond):
	}

	dst := make([]complex64, 6)
	total := 0
	for total < 6 {
		n, ok := r.Consume(dst[total:])
		if !ok {
			t.Fatalf("stream ended early")
		}
		total += n
	}
	wg.Wait()
	if dst[5] != 6 {
		t.Fatalf("expected last sample 6, got %v", dst[5])
	}
}

func TestCloseDrainsThenEnds(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Produce([]complex64{7, 8})
	r.Close()
	r.Produce([]complex64{9}) // ignored after close

	dst := make([]complex64, 4)
	n, ok := r.Consume(dst)
	if !ok || n != 2 {
		t.Fatalf("expected 2 buffered samples, got n=%d ok=%v", n, ok)
	}
	if _, ok := r.Consume(dst); ok {
		t.Fatalf("expected end of stream after drain")
	}
}

func TestCloseWakesBlockedConsumer(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ended := make(chan bool, 1)
	go func() {
		_, ok := r.Consume(make([]complex64, 1))
		ended <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	r.Close()
	select {
	case ok := <-ended:
		if ok {
			t.Fatalf("expected ok=false from a closed empty ring")
		}
	case <-time.After(time.Second):
		t.Fatalf("consumer was not woken by Close")
	}
}
