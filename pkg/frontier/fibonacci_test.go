package frontier

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestFibonacciEmpty(t *testing.T) {
	f := NewFibonacci[string]()

	if !f.Empty() || f.Len() != 0 {
		t.Fatalf("expected empty heap, got len %d", f.Len())
	}
	if _, err := f.PeekMin(); !errors.Is(err, ErrEmpty) {
		t.Errorf("PeekMin: expected ErrEmpty, got %v", err)
	}
	if _, err := f.PopMin(); !errors.Is(err, ErrEmpty) {
		t.Errorf("PopMin: expected ErrEmpty, got %v", err)
	}
	if got := f.Entries(); len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestFibonacciPopOrder(t *testing.T) {
	f := NewFibonacci[int]()
	priorities := []float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	for i, p := range priorities {
		f.Insert(Entry[int]{Priority: p, Value: i})
	}

	if f.Len() != len(priorities) {
		t.Fatalf("expected len %d, got %d", len(priorities), f.Len())
	}

	var got []float64
	for !f.Empty() {
		e, err := f.PopMin()
		if err != nil {
			t.Fatalf("PopMin failed: %v", err)
		}
		got = append(got, e.Priority)
	}

	if !sort.Float64sAreSorted(got) {
		t.Errorf("entries not popped in order: %v", got)
	}
}

func TestFibonacciTieBreakIsInsertionOrder(t *testing.T) {
	f := NewFibonacci[string]()
	f.Insert(Entry[string]{Priority: 1, Value: "first"})
	f.Insert(Entry[string]{Priority: 1, Value: "second"})
	f.Insert(Entry[string]{Priority: math.Inf(1), Value: "inf-a"})
	f.Insert(Entry[string]{Priority: 1, Value: "third"})
	f.Insert(Entry[string]{Priority: math.Inf(1), Value: "inf-b"})

	want := []string{"first", "second", "third", "inf-a", "inf-b"}
	for i, w := range want {
		e, err := f.PopMin()
		if err != nil {
			t.Fatalf("PopMin %d failed: %v", i, err)
		}
		if e.Value != w {
			t.Errorf("pop %d: expected %s, got %s", i, w, e.Value)
		}
	}
}

func TestFibonacciUpdate(t *testing.T) {
	t.Run("decrease moves entry to the top", func(t *testing.T) {
		f := NewFibonacci[string]()
		var handles []Handle[string]
		for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
			handles = append(handles, f.Insert(Entry[string]{Priority: float64(10 + i), Value: name}))
		}
		// Force a consolidation so that some nodes have parents.
		if _, err := f.PopMin(); err != nil {
			t.Fatalf("PopMin failed: %v", err)
		}

		if err := f.Update(handles[5], Entry[string]{Priority: 1, Value: "f"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		top, err := f.PeekMin()
		if err != nil {
			t.Fatalf("PeekMin failed: %v", err)
		}
		if top.Value != "f" || top.Priority != 1 {
			t.Errorf("expected f@1 on top, got %s@%v", top.Value, top.Priority)
		}
		if !handles[5].Valid() {
			t.Error("handle should stay valid after update")
		}
	})

	t.Run("increase keeps handle valid", func(t *testing.T) {
		f := NewFibonacci[string]()
		ha := f.Insert(Entry[string]{Priority: 1, Value: "a"})
		f.Insert(Entry[string]{Priority: 2, Value: "b"})

		if err := f.Update(ha, Entry[string]{Priority: 3, Value: "a"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if f.Len() != 2 {
			t.Fatalf("expected len 2, got %d", f.Len())
		}
		top, _ := f.PeekMin()
		if top.Value != "b" {
			t.Errorf("expected b on top, got %s", top.Value)
		}
		e, err := ha.Entry()
		if err != nil {
			t.Fatalf("handle invalid after increase: %v", err)
		}
		if e.Priority != 3 {
			t.Errorf("expected priority 3 behind handle, got %v", e.Priority)
		}
	})

	t.Run("increase keeps insertion rank among equals", func(t *testing.T) {
		f := NewFibonacci[string]()
		ha := f.Insert(Entry[string]{Priority: 1, Value: "a"})
		f.Insert(Entry[string]{Priority: 5, Value: "b"})

		if err := f.Update(ha, Entry[string]{Priority: 5, Value: "a"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		top, _ := f.PeekMin()
		if top.Value != "a" {
			t.Errorf("expected older entry a first among equals, got %s", top.Value)
		}
	})
}

func TestFibonacciInvalidHandle(t *testing.T) {
	f := NewFibonacci[int]()
	h1 := f.Insert(Entry[int]{Priority: 1, Value: 1})
	h2 := f.Insert(Entry[int]{Priority: 2, Value: 2})

	if _, err := f.PopMin(); err != nil {
		t.Fatalf("PopMin failed: %v", err)
	}
	if h1.Valid() {
		t.Error("popped handle should be invalid")
	}
	if err := f.Update(h1, Entry[int]{Priority: 0, Value: 1}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Update on popped handle: expected ErrInvalidHandle, got %v", err)
	}

	if err := f.Erase(h2); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if err := f.Erase(h2); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("second Erase: expected ErrInvalidHandle, got %v", err)
	}

	var zero Handle[int]
	if err := f.Erase(zero); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("zero handle: expected ErrInvalidHandle, got %v", err)
	}

	other := NewFibonacci[int]()
	foreign := other.Insert(Entry[int]{Priority: 1, Value: 9})
	if err := f.Erase(foreign); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("foreign handle: expected ErrInvalidHandle, got %v", err)
	}
}

func TestFibonacciEraseArbitrary(t *testing.T) {
	f := NewFibonacci[int]()
	handles := make([]Handle[int], 0, 32)
	for i := 0; i < 32; i++ {
		handles = append(handles, f.Insert(Entry[int]{Priority: float64(i), Value: i}))
	}
	// Build some tree structure first.
	if _, err := f.PopMin(); err != nil {
		t.Fatalf("PopMin failed: %v", err)
	}

	for i := 1; i < 32; i += 2 {
		if err := f.Erase(handles[i]); err != nil {
			t.Fatalf("Erase(%d) failed: %v", i, err)
		}
	}

	if f.Len() != 15 {
		t.Fatalf("expected 15 entries, got %d", f.Len())
	}
	if got := len(f.Entries()); got != 15 {
		t.Fatalf("Entries returned %d, expected 15", got)
	}
	for want := 2; want < 32; want += 2 {
		e, err := f.PopMin()
		if err != nil {
			t.Fatalf("PopMin failed: %v", err)
		}
		if e.Value != want {
			t.Fatalf("expected %d, got %d", want, e.Value)
		}
	}
}

// TestFibonacciRandomized checks the heap against a naive model under a mix
// of all operations.
func TestFibonacciRandomized(t *testing.T) {
	type live struct {
		h   Handle[int]
		pri float64
		seq int
	}

	rng := rand.New(rand.NewSource(42))
	f := NewFibonacci[int]()
	model := make(map[int]*live)
	nextID, nextSeq := 0, 0

	modelMin := func() (int, bool) {
		best, found := 0, false
		for id, l := range model {
			if !found || l.pri < model[best].pri || (l.pri == model[best].pri && l.seq < model[best].seq) {
				best, found = id, true
			}
		}
		return best, found
	}
	anyID := func() int {
		ids := make([]int, 0, len(model))
		for id := range model {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		return ids[rng.Intn(len(ids))]
	}

	for step := 0; step < 5000; step++ {
		op := rng.Intn(10)
		switch {
		case op < 4 || len(model) == 0:
			pri := float64(rng.Intn(50))
			h := f.Insert(Entry[int]{Priority: pri, Value: nextID})
			model[nextID] = &live{h: h, pri: pri, seq: nextSeq}
			nextID++
			nextSeq++
		case op < 6:
			id := anyID()
			pri := float64(rng.Intn(50))
			if err := f.Update(model[id].h, Entry[int]{Priority: pri, Value: id}); err != nil {
				t.Fatalf("step %d: Update failed: %v", step, err)
			}
			model[id].pri = pri
		case op < 8:
			id := anyID()
			if err := f.Erase(model[id].h); err != nil {
				t.Fatalf("step %d: Erase failed: %v", step, err)
			}
			delete(model, id)
		default:
			want, _ := modelMin()
			e, err := f.PopMin()
			if err != nil {
				t.Fatalf("step %d: PopMin failed: %v", step, err)
			}
			if e.Value != want {
				t.Fatalf("step %d: expected %d, popped %d", step, want, e.Value)
			}
			delete(model, want)
		}

		if f.Len() != len(model) {
			t.Fatalf("step %d: len %d, model %d", step, f.Len(), len(model))
		}
		if want, ok := modelMin(); ok {
			top, err := f.PeekMin()
			if err != nil {
				t.Fatalf("step %d: PeekMin failed: %v", step, err)
			}
			if top.Value != want {
				t.Fatalf("step %d: expected min %d, got %d", step, want, top.Value)
			}
		}
	}
}
