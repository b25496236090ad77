// Package pqueue implements the AdaptivePriorityQueue named in spec.md
// §4.13: an integer-keyed priority queue over a small expected key range
// [0, K) that starts out as a bucket array (O(1) push, amortized O(1) pop in
// the bucket phase) and switches, once and for all, to a binary min-heap
// once the key range becomes sparse relative to the element count.
//
// Grounded on the original source's priority_queue.h (BucketQueue,
// HeapQueue, AdaptiveQueue): this is the structure Distances (spec.md §4.5)
// runs Dijkstra over. The heap mode is backed by container/heap — no
// third-party priority-queue package appears anywhere in the retrieved
// corpus, so the standard library's heap.Interface is used directly rather
// than invented (see DESIGN.md).
package pqueue

import "container/heap"

// switchThreshold is the element-to-max-key-seen ratio below which the
// queue abandons the bucket array for a heap (spec.md §4.13: "switches ...
// once the key range becomes sparse"). Chosen so a queue that has pushed,
// say, 100 elements but has seen keys up to 10,000 (a 1% density) switches,
// while a queue with dense small keys (typical of unit-cost BFS distance
// values) never does.
const switchThreshold = 0.1

// AdaptivePriorityQueue stores (key, value) pairs with integer keys,
// popping the minimum key first. Values with equal keys are returned in an
// unspecified but deterministic-per-run order (LIFO within a bucket, heap
// order once switched) — no caller in this module relies on tie order.
type AdaptivePriorityQueue[V any] struct {
	useBuckets     bool
	buckets        [][]V
	currentBucket  int
	numElements    int
	maxKeySeen     int

	heap entryHeap[V]
}

// New returns an empty AdaptivePriorityQueue.
func New[V any]() *AdaptivePriorityQueue[V] {
	return &AdaptivePriorityQueue[V]{useBuckets: true}
}

// Push inserts value under key. key must be >= 0.
func (q *AdaptivePriorityQueue[V]) Push(key int, value V) {
	if key < 0 {
		panic("pqueue: negative key")
	}
	q.numElements++
	if key > q.maxKeySeen {
		q.maxKeySeen = key
	}

	if q.useBuckets {
		q.pushBucket(key, value)
		if q.shouldSwitchToHeap() {
			q.convertToHeap()
		}
		return
	}
	heap.Push(&q.heap, entry[V]{key: key, value: value})
}

func (q *AdaptivePriorityQueue[V]) pushBucket(key int, value V) {
	if key >= len(q.buckets) {
		grown := make([][]V, key+1)
		copy(grown, q.buckets)
		q.buckets = grown
	} else if key < q.currentBucket {
		q.currentBucket = key
	}
	q.buckets[key] = append(q.buckets[key], value)
}

func (q *AdaptivePriorityQueue[V]) shouldSwitchToHeap() bool {
	if q.maxKeySeen == 0 {
		return false
	}
	return float64(q.numElements)/float64(q.maxKeySeen+1) < switchThreshold
}

// convertToHeap migrates every bucketed element into the heap
// representation. Once converted, the queue never reverts (spec.md §4.13:
// "Once switched, stays a heap").
func (q *AdaptivePriorityQueue[V]) convertToHeap() {
	q.heap = make(entryHeap[V], 0, q.numElements)
	for key, bucket := range q.buckets {
		for _, v := range bucket {
			q.heap = append(q.heap, entry[V]{key: key, value: v})
		}
	}
	heap.Init(&q.heap)
	q.buckets = nil
	q.useBuckets = false
}

// Pop removes and returns the minimum-key entry. Panics if empty.
func (q *AdaptivePriorityQueue[V]) Pop() (key int, value V) {
	if q.Empty() {
		panic("pqueue: Pop from empty queue")
	}
	q.numElements--
	if q.useBuckets {
		return q.popBucket()
	}
	e := heap.Pop(&q.heap).(entry[V])
	return e.key, e.value
}

func (q *AdaptivePriorityQueue[V]) popBucket() (int, V) {
	for q.currentBucket < len(q.buckets) && len(q.buckets[q.currentBucket]) == 0 {
		q.currentBucket++
	}
	if q.currentBucket >= len(q.buckets) {
		panic("pqueue: invariant violated, numElements says non-empty but no bucket has an element")
	}
	bucket := q.buckets[q.currentBucket]
	n := len(bucket)
	v := bucket[n-1]
	q.buckets[q.currentBucket] = bucket[:n-1]
	return q.currentBucket, v
}

// Len returns the number of elements currently queued.
func (q *AdaptivePriorityQueue[V]) Len() int { return q.numElements }

// Empty reports whether the queue has no elements.
func (q *AdaptivePriorityQueue[V]) Empty() bool { return q.numElements == 0 }

// Clear empties the queue, keeping allocated backing storage (mirrors the
// source's clear() versus clear_and_release_memory() distinction: this is
// the cheap variant for reuse across repeated Dijkstra runs).
func (q *AdaptivePriorityQueue[V]) Clear() {
	q.numElements = 0
	q.maxKeySeen = 0
	if q.useBuckets {
		for i := range q.buckets {
			q.buckets[i] = q.buckets[i][:0]
		}
		q.currentBucket = 0
		return
	}
	q.heap = q.heap[:0]
}

type entry[V any] struct {
	key   int
	value V
}

// entryHeap implements container/heap.Interface.
type entryHeap[V any] []entry[V]

func (h entryHeap[V]) Len() int            { return len(h) }
func (h entryHeap[V]) Less(i, j int) bool  { return h[i].key < h[j].key }
func (h entryHeap[V]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap[V]) Push(x interface{}) { *h = append(*h, x.(entry[V])) }
func (h *entryHeap[V]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
