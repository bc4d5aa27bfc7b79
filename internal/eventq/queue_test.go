package eventq

import (
	"sync"
	"testing"
)

func TestPopEmpty(t *testing.T) {
	q := New[int]()
	if v, ok := q.Pop(); ok {
		t.Fatalf("Pop on empty queue returned %v", v)
	}
	if !q.Empty() {
		t.Fatal("Empty() = false on fresh queue")
	}
}

func TestFIFOSingleProducer(t *testing.T) {
	q := New[int]()
	const n = 1000
	for i := 0; i < n; i++ {
		q.Push(i)
	}
	for i := 0; i < n; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("queue empty after %d pops, want %d", i, n)
		}
		if v != i {
			t.Fatalf("popped %d, want %d", v, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("queue not empty after draining")
	}
}

func TestInterleavedPushPop(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Push("b")
	if v, _ := q.Pop(); v != "a" {
		t.Fatalf("popped %q, want a", v)
	}
	q.Push("c")
	if v, _ := q.Pop(); v != "b" {
		t.Fatalf("popped %q, want b", v)
	}
	if v, _ := q.Pop(); v != "c" {
		t.Fatalf("popped %q, want c", v)
	}
}

type tagged struct {
	producer int
	seq      int
}

// Per-producer FIFO must hold even with concurrent producers; ordering
// across producers is undefined and deliberately unchecked here.
func TestConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	q := New[tagged]()
	const producers = 8
	const perProducer = 2000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(tagged{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	lastSeq := make([]int, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}
	total := 0
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		total++
		if v.seq <= lastSeq[v.producer] {
			t.Fatalf("producer %d: seq %d popped after %d", v.producer, v.seq, lastSeq[v.producer])
		}
		lastSeq[v.producer] = v.seq
	}
	if total != producers*perProducer {
		t.Fatalf("popped %d items, want %d", total, producers*perProducer)
	}
}

func TestConcurrentProducersAndConsumers(t *testing.T) {
	q := New[int]()
	const producers = 4
	const consumers = 4
	const perProducer = 5000

	var produced sync.WaitGroup
	for p := 0; p < producers; p++ {
		produced.Add(1)
		go func() {
			defer produced.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	done := make(chan struct{})
	counts := make(chan int, consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			n := 0
			for {
				if _, ok := q.Pop(); ok {
					n++
					continue
				}
				select {
				case <-done:
					// Producers are finished; drain whatever is left.
					for {
						if _, ok := q.Pop(); !ok {
							counts <- n
							return
						}
						n++
					}
				default:
				}
			}
		}()
	}

	produced.Wait()
	close(done)

	total := 0
	for c := 0; c < consumers; c++ {
		total += <-counts
	}
	if total != producers*perProducer {
		t.Fatalf("consumed %d items, want %d", total, producers*perProducer)
	}
}
