package frontier

// node is a Fibonacci heap cell. Siblings form a circular doubly linked list.
type node[T any] struct {
	entry Entry[T]
	seq   uint64

	parent *node[T]
	child  *node[T]
	left   *node[T]
	right  *node[T]
	degree int
	marked bool

	// owner is nil once the node left its heap.
	owner *Fibonacci[T]
}

// Fibonacci is a Queue backed by a Fibonacci heap. Insert and decreasing
// Update run in O(1) amortized time, PopMin and Erase in O(log n) amortized.
type Fibonacci[T any] struct {
	min  *node[T]
	size int
	seq  uint64
}

var _ Queue[int] = (*Fibonacci[int])(nil)

// NewFibonacci creates an empty Fibonacci heap.
func NewFibonacci[T any]() *Fibonacci[T] {
	return &Fibonacci[T]{}
}

// Len returns the number of entries.
func (f *Fibonacci[T]) Len() int {
	return f.size
}

// Empty reports whether the heap holds no entries.
func (f *Fibonacci[T]) Empty() bool {
	return f.size == 0
}

// Insert adds an entry to the root list.
func (f *Fibonacci[T]) Insert(entry Entry[T]) Handle[T] {
	f.seq++
	n := &node[T]{entry: entry, seq: f.seq}
	f.attach(n)
	return Handle[T]{n: n}
}

// PeekMin returns the minimum entry.
func (f *Fibonacci[T]) PeekMin() (Entry[T], error) {
	if f.min == nil {
		return Entry[T]{}, ErrEmpty
	}
	return f.min.entry, nil
}

// PopMin removes and returns the minimum entry.
func (f *Fibonacci[T]) PopMin() (Entry[T], error) {
	if f.min == nil {
		return Entry[T]{}, ErrEmpty
	}
	n := f.extractMin()
	n.owner = nil
	return n.entry, nil
}

// Update replaces the entry behind h. A lower (or equal) priority is applied
// in place with cascading cuts; a higher one detaches the node and inserts it
// again, keeping its insertion sequence.
func (f *Fibonacci[T]) Update(h Handle[T], entry Entry[T]) error {
	n, err := f.resolve(h)
	if err != nil {
		return err
	}

	if entry.Priority > n.entry.Priority {
		f.remove(n)
		n.entry = entry
		f.attach(n)
		return nil
	}

	n.entry = entry
	if p := n.parent; p != nil && f.less(n, p) {
		f.cut(n, p)
		f.cascadingCut(p)
	}
	if f.less(n, f.min) {
		f.min = n
	}
	return nil
}

// Erase removes the entry behind h.
func (f *Fibonacci[T]) Erase(h Handle[T]) error {
	n, err := f.resolve(h)
	if err != nil {
		return err
	}
	f.remove(n)
	n.owner = nil
	return nil
}

// Entries returns every entry, walking the forest depth first.
func (f *Fibonacci[T]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, f.size)
	var walk func(start *node[T])
	walk = func(start *node[T]) {
		if start == nil {
			return
		}
		n := start
		for {
			out = append(out, n.entry)
			walk(n.child)
			n = n.right
			if n == start {
				return
			}
		}
	}
	walk(f.min)
	return out
}

func (f *Fibonacci[T]) resolve(h Handle[T]) (*node[T], error) {
	if h.n == nil || h.n.owner != f {
		return nil, ErrInvalidHandle
	}
	return h.n, nil
}

// less orders by priority, then by insertion sequence.
func (f *Fibonacci[T]) less(a, b *node[T]) bool {
	if a.entry.Priority != b.entry.Priority {
		return a.entry.Priority < b.entry.Priority
	}
	return a.seq < b.seq
}

// attach puts a detached node into the root list as a fresh tree.
func (f *Fibonacci[T]) attach(n *node[T]) {
	n.parent = nil
	n.child = nil
	n.degree = 0
	n.marked = false
	n.owner = f
	n.left, n.right = n, n

	if f.min == nil {
		f.min = n
	} else {
		splice(f.min, n)
		if f.less(n, f.min) {
			f.min = n
		}
	}
	f.size++
}

// remove takes an arbitrary node out of the heap by cutting it up to the root
// list, forcing it to be the minimum and extracting it.
func (f *Fibonacci[T]) remove(n *node[T]) {
	if p := n.parent; p != nil {
		f.cut(n, p)
		f.cascadingCut(p)
	}
	f.min = n
	f.extractMin()
}

// extractMin unlinks f.min, promotes its children and consolidates.
func (f *Fibonacci[T]) extractMin() *node[T] {
	z := f.min

	// Move children to the root list.
	if c := z.child; c != nil {
		children := siblings(c)
		for _, x := range children {
			unlink(x)
			x.parent = nil
			x.marked = false
			splice(z, x)
		}
		z.child = nil
		z.degree = 0
	}

	if z.right == z {
		f.min = nil
	} else {
		f.min = z.right
		unlink(z)
		f.consolidate()
	}
	z.left, z.right = z, z
	f.size--
	return z
}

// consolidate links roots of equal degree until every degree is unique.
func (f *Fibonacci[T]) consolidate() {
	var table []*node[T]

	for _, w := range siblings(f.min) {
		x := w
		d := x.degree
		for {
			for d >= len(table) {
				table = append(table, nil)
			}
			y := table[d]
			if y == nil {
				break
			}
			if f.less(y, x) {
				x, y = y, x
			}
			f.link(y, x)
			table[d] = nil
			d++
		}
		for d >= len(table) {
			table = append(table, nil)
		}
		table[d] = x
	}

	f.min = nil
	for _, n := range table {
		if n == nil {
			continue
		}
		if f.min == nil || f.less(n, f.min) {
			f.min = n
		}
	}
}

// link makes root y a child of root x.
func (f *Fibonacci[T]) link(y, x *node[T]) {
	unlink(y)
	y.parent = x
	y.marked = false
	if x.child == nil {
		x.child = y
	} else {
		splice(x.child, y)
	}
	x.degree++
}

// cut moves x from the child list of p to the root list.
func (f *Fibonacci[T]) cut(x, p *node[T]) {
	if p.child == x {
		if x.right == x {
			p.child = nil
		} else {
			p.child = x.right
		}
	}
	unlink(x)
	p.degree--
	x.parent = nil
	x.marked = false
	splice(f.min, x)
}

func (f *Fibonacci[T]) cascadingCut(y *node[T]) {
	for {
		p := y.parent
		if p == nil {
			return
		}
		if !y.marked {
			y.marked = true
			return
		}
		f.cut(y, p)
		y = p
	}
}

// splice inserts the single node n to the right of at.
func splice[T any](at, n *node[T]) {
	n.left = at
	n.right = at.right
	at.right.left = n
	at.right = n
}

// unlink removes n from its sibling list and makes it a singleton.
func unlink[T any](n *node[T]) {
	n.left.right = n.right
	n.right.left = n.left
	n.left, n.right = n, n
}

// siblings snapshots the circular list starting at start.
func siblings[T any](start *node[T]) []*node[T] {
	var out []*node[T]
	n := start
	for {
		out = append(out, n)
		n = n.right
		if n == start {
			return out
		}
	}
}
