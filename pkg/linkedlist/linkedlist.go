// Package linkedlist provides a generic, intrusive, doubly-linked ownership list.
//
// Items embed a Link and expose it through the Linkable interface. An item may be
// linked into at most one list at a time; inserting a linked item panics. Containers
// observe ownership changes through the Adopt and Free callbacks, which is how model
// nodes keep their back-references current without the list knowing about them.
package linkedlist

import "github.com/yaklabco/gomobiledoc/pkg/errs"

// Link holds the list pointers embedded in every item.
type Link[T any] struct {
	prev  T
	next  T
	owner any
}

// Prev returns the previous item, or the zero value at the head.
func (l *Link[T]) Prev() T {
	return l.prev
}

// Next returns the next item, or the zero value at the tail.
func (l *Link[T]) Next() T {
	return l.next
}

// IsLinked reports whether the item currently belongs to a list.
func (l *Link[T]) IsLinked() bool {
	return l.owner != nil
}

// Linkable is implemented by pointer types that embed a Link.
type Linkable[T any] interface {
	comparable
	ListLink() *Link[T]
}

// Options configures ownership callbacks.
type Options[T any] struct {
	// Adopt is called after an item is linked into the list.
	Adopt func(item T)

	// Free is called after an item is unlinked from the list.
	Free func(item T)
}

// List is a doubly-linked list of items that embed a Link.
type List[T Linkable[T]] struct {
	head   T
	tail   T
	length int
	adopt  func(T)
	free   func(T)
}

// New creates an empty list with the given callbacks.
func New[T Linkable[T]](opts Options[T]) *List[T] {
	return &List[T]{adopt: opts.Adopt, free: opts.Free}
}

// Head returns the first item, or the zero value when empty.
func (l *List[T]) Head() T {
	return l.head
}

// Tail returns the last item, or the zero value when empty.
func (l *List[T]) Tail() T {
	return l.tail
}

// Len returns the number of linked items.
func (l *List[T]) Len() int {
	return l.length
}

// IsEmpty reports whether the list has no items.
func (l *List[T]) IsEmpty() bool {
	return l.length == 0
}

// Contains reports whether item is linked into this list.
func (l *List[T]) Contains(item T) bool {
	var zero T
	return item != zero && item.ListLink().owner == any(l)
}

// Append links item at the tail.
func (l *List[T]) Append(item T) {
	var zero T
	l.InsertBefore(item, zero)
}

// Prepend links item at the head.
func (l *List[T]) Prepend(item T) {
	l.InsertBefore(item, l.head)
}

// InsertBefore links item immediately before ref. A zero ref appends.
func (l *List[T]) InsertBefore(item, ref T) {
	var zero T
	l.ensureUnlinked(item)
	if ref != zero {
		errs.Assert(l.Contains(ref), "insertion reference is not in this list")
	}

	link := item.ListLink()
	link.owner = l

	if ref == zero {
		link.prev = l.tail
		link.next = zero
		if l.tail != zero {
			l.tail.ListLink().next = item
		} else {
			l.head = item
		}
		l.tail = item
	} else {
		refLink := ref.ListLink()
		link.prev = refLink.prev
		link.next = ref
		if refLink.prev != zero {
			refLink.prev.ListLink().next = item
		} else {
			l.head = item
		}
		refLink.prev = item
	}

	l.length++
	if l.adopt != nil {
		l.adopt(item)
	}
}

// InsertAfter links item immediately after ref. A zero ref prepends.
func (l *List[T]) InsertAfter(item, ref T) {
	var zero T
	if ref == zero {
		l.Prepend(item)
		return
	}
	errs.Assert(l.Contains(ref), "insertion reference is not in this list")
	l.InsertBefore(item, ref.ListLink().next)
}

// Remove unlinks item from the list.
func (l *List[T]) Remove(item T) {
	var zero T
	errs.Assert(l.Contains(item), "cannot remove an item that is not in this list")

	link := item.ListLink()
	if link.prev != zero {
		link.prev.ListLink().next = link.next
	} else {
		l.head = link.next
	}
	if link.next != zero {
		link.next.ListLink().prev = link.prev
	} else {
		l.tail = link.prev
	}

	link.prev = zero
	link.next = zero
	link.owner = nil
	l.length--

	if l.free != nil {
		l.free(item)
	}
}

// Splice removes count items starting at ref and links items in their place.
// A zero ref appends items at the tail without removing anything.
func (l *List[T]) Splice(ref T, count int, items []T) {
	var zero T
	next := ref
	for i := 0; i < count && next != zero; i++ {
		current := next
		next = current.ListLink().next
		l.Remove(current)
	}
	for _, item := range items {
		l.InsertBefore(item, next)
	}
}

// ReadRange returns the items from head through tail inclusive.
// A zero tail reads to the end of the list.
func (l *List[T]) ReadRange(head, tail T) []T {
	var zero T
	var out []T
	for item := head; item != zero; item = item.ListLink().next {
		out = append(out, item)
		if item == tail {
			break
		}
	}
	return out
}

// Detect returns the first item satisfying pred, walking from start (the head or
// tail when start is zero) towards the tail, or towards the head when reverse is set.
func (l *List[T]) Detect(pred func(T) bool, start T, reverse bool) T {
	var zero T
	item := start
	if item == zero {
		if reverse {
			item = l.tail
		} else {
			item = l.head
		}
	}
	for item != zero {
		if pred(item) {
			return item
		}
		if reverse {
			item = item.ListLink().prev
		} else {
			item = item.ListLink().next
		}
	}
	return zero
}

// RemoveBy unlinks every item satisfying pred in a single pass.
func (l *List[T]) RemoveBy(pred func(T) bool) {
	var zero T
	item := l.head
	for item != zero {
		next := item.ListLink().next
		if pred(item) {
			l.Remove(item)
		}
		item = next
	}
}

// ForEach calls fn with every item and its index. The next pointer is read before
// fn runs, so fn may remove the current item.
func (l *List[T]) ForEach(fn func(item T, index int)) {
	var zero T
	index := 0
	for item := l.head; item != zero; {
		next := item.ListLink().next
		fn(item, index)
		index++
		item = next
	}
}

// Items returns the linked items in order.
func (l *List[T]) Items() []T {
	out := make([]T, 0, l.length)
	l.ForEach(func(item T, _ int) {
		out = append(out, item)
	})
	return out
}

// At returns the item at index, or the zero value when out of range.
func (l *List[T]) At(index int) T {
	var zero T
	if index < 0 {
		return zero
	}
	item := l.head
	for i := 0; i < index && item != zero; i++ {
		item = item.ListLink().next
	}
	return item
}

// IndexOf returns the position of item, or -1 when it is not in the list.
func (l *List[T]) IndexOf(item T) int {
	var zero T
	index := 0
	for current := l.head; current != zero; current = current.ListLink().next {
		if current == item {
			return index
		}
		index++
	}
	return -1
}

// Any reports whether some item satisfies pred.
func (l *List[T]) Any(pred func(T) bool) bool {
	var zero T
	return l.Detect(pred, zero, false) != zero
}

// Every reports whether all items satisfy pred.
func (l *List[T]) Every(pred func(T) bool) bool {
	return !l.Any(func(item T) bool { return !pred(item) })
}

func (l *List[T]) ensureUnlinked(item T) {
	var zero T
	errs.Assert(item != zero, "cannot insert a nil item")
	link := item.ListLink()
	if link.owner == nil {
		return
	}
	if link.owner == any(l) {
		errs.Assert(false, "cannot insert an item that is already in this list")
	}
	errs.Assert(false, "cannot insert an item that is already in another list")
}
