package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingSource struct {
	mu    sync.Mutex
	calls []string
	hits  []Suggestion
	err   error
	block chan struct{}
}

func (s *countingSource) Lookup(ctx context.Context, prefix string) ([]Suggestion, error) {
	s.mu.Lock()
	s.calls = append(s.calls, prefix)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.hits, s.err
}

func (s *countingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *countingSource) lastCall() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

func collectResult(t *testing.T, timeout time.Duration, run func(fn func([]Suggestion))) []Suggestion {
	t.Helper()
	ch := make(chan []Suggestion, 1)
	run(func(hits []Suggestion) { ch <- hits })
	select {
	case hits := <-ch:
		return hits
	case <-time.After(timeout):
		t.Fatal("no result delivered")
		return nil
	}
}

func TestBrokerMinPrefixGate(t *testing.T) {
	src := &countingSource{hits: []Suggestion{{Value: "Austin, TX"}}}
	b := NewBroker(src, nil, WithDebounce(time.Millisecond))
	defer b.Close()

	hits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "au", fn)
	})
	if len(hits) != 0 {
		t.Fatalf("short prefix must resolve empty, got %v", hits)
	}
	if src.callCount() != 0 {
		t.Fatal("short prefix must never reach the source")
	}
}

func TestBrokerDebounceCollapsesBursts(t *testing.T) {
	src := &countingSource{hits: []Suggestion{{Value: "Austin, TX"}}}
	b := NewBroker(src, nil, WithDebounce(30*time.Millisecond))
	defer b.Close()

	drop := func([]Suggestion) {}
	b.Query(context.Background(), "abc", drop)
	b.Query(context.Background(), "abcd", drop)
	hits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "abcde", fn)
	})

	if len(hits) != 1 {
		t.Fatalf("expected the source hits, got %v", hits)
	}
	if src.callCount() != 1 {
		t.Fatalf("burst should collapse to one call, got %d", src.callCount())
	}
	if src.lastCall() != "abcde" {
		t.Fatalf("the final prefix should win, got %q", src.lastCall())
	}
}

func TestBrokerStaleResponseDiscarded(t *testing.T) {
	block := make(chan struct{})
	src := &countingSource{hits: []Suggestion{{Value: "old"}}, block: block}
	b := NewBroker(src, nil, WithDebounce(time.Millisecond))
	defer b.Close()

	staleCalled := make(chan struct{}, 1)
	b.Query(context.Background(), "first", func([]Suggestion) { staleCalled <- struct{}{} })

	// Wait until the first lookup is in flight, then supersede it.
	deadline := time.Now().Add(time.Second)
	for src.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first lookup never started")
		}
		time.Sleep(time.Millisecond)
	}

	src.mu.Lock()
	src.block = nil
	src.hits = []Suggestion{{Value: "new"}}
	src.mu.Unlock()

	hits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "second", fn)
	})
	close(block)

	if len(hits) != 1 || hits[0].Value != "new" {
		t.Fatalf("expected the newer result, got %v", hits)
	}
	select {
	case <-staleCalled:
		t.Fatal("superseded query must not deliver a result")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerSwallowsSourceErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	b := NewBroker(src, nil, WithDebounce(time.Millisecond))
	defer b.Close()

	hits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "austin", fn)
	})
	if len(hits) != 0 {
		t.Fatalf("errors must resolve to an empty result, got %v", hits)
	}
}

func TestBrokerCachesResults(t *testing.T) {
	src := &countingSource{hits: []Suggestion{{Value: "Austin, TX"}}}
	b := NewBroker(src, nil, WithDebounce(time.Millisecond))
	defer b.Close()

	first := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "austin", fn)
	})
	second := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "austin", fn)
	})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected hits both times: %v %v", first, second)
	}
	if src.callCount() != 1 {
		t.Fatalf("second query should be served from cache, got %d calls", src.callCount())
	}
}

func TestBrokersAreIndependent(t *testing.T) {
	locSrc := &countingSource{hits: []Suggestion{{Value: "Austin, TX"}}}
	conSrc := &countingSource{hits: []Suggestion{{Value: "Ada Lovelace"}}}
	loc := NewBroker(locSrc, nil, WithDebounce(time.Millisecond))
	con := NewBroker(conSrc, nil, WithDebounce(time.Millisecond))
	defer loc.Close()
	defer con.Close()

	locHits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		loc.Query(context.Background(), "austin", fn)
	})
	conHits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		con.Query(context.Background(), "ada lo", fn)
	})

	if locHits[0].Value != "Austin, TX" || conHits[0].Value != "Ada Lovelace" {
		t.Fatalf("brokers leaked state: %v %v", locHits, conHits)
	}
}

func TestBrokerClosedResolvesEmpty(t *testing.T) {
	src := &countingSource{hits: []Suggestion{{Value: "x"}}}
	b := NewBroker(src, nil, WithDebounce(time.Millisecond))
	b.Close()

	hits := collectResult(t, time.Second, func(fn func([]Suggestion)) {
		b.Query(context.Background(), "austin", fn)
	})
	if len(hits) != 0 || src.callCount() != 0 {
		t.Fatalf("closed broker must not call the source: %v %d", hits, src.callCount())
	}
}
