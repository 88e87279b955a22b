package canvas

import "sync"

// Registry hands out integer handles for mounted editors. Handles are never
// reused, so a late call with a disposed handle finds nothing.
type Registry[T any] struct {
	mu     sync.Mutex
	items  map[int]T
	nextID int
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[int]T), nextID: 1}
}

// Add stores v and returns its handle.
func (r *Registry[T]) Add(v T) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.items[id] = v
	return id
}

func (r *Registry[T]) Get(id int) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	return v, ok
}

// Remove drops the handle and reports whether it was live.
func (r *Registry[T]) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
