// Package frontier provides mutable-priority min-heaps used as exploration
// worklists.
//
// A Queue hands out a Handle for every inserted entry. The handle is the only
// way to change the priority of that entry or to remove it before it reaches
// the top, and it stays valid until the entry leaves the queue:
//
//	q := frontier.NewFibonacci[string]()
//	h := q.Insert(frontier.Entry[string]{Priority: 4, Value: "a"})
//	_ = q.Update(h, frontier.Entry[string]{Priority: 1, Value: "a"})
//	top, _ := q.PeekMin() // {1 a}
//
// Entries with equal priority come out in insertion order. Moving an entry with
// Update does not reset its position among equals.
//
// Queues are not safe for concurrent use.
package frontier
