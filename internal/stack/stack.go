package stack

// Stack is a LIFO worklist. The zero value is an empty stack.
type Stack[T any] []T

func New[T any](capacity uint) Stack[T] {
	return make(Stack[T], 0, capacity)
}

func (st Stack[T]) IsEmpty() bool {
	return len(st) <= 0
}

func (st Stack[T]) Len() uint {
	return uint(len(st))
}

func (st *Stack[T]) Push(item T) {
	*st = append(*st, item)
}

// PushReversed pushes items so that items[0] is popped first.
func (st *Stack[T]) PushReversed(items []T) {
	for i := len(items) - 1; i >= 0; i-- {
		st.Push(items[i])
	}
}

// Pop removes the top item. ok is false if the stack was empty.
func (st *Stack[T]) Pop() (item T, ok bool) {
	if st.IsEmpty() {
		return item, false
	}
	n := st.Len() - 1
	item = (*st)[n]
	var zero T
	(*st)[n] = zero
	*st = (*st)[:n]
	return item, true
}
