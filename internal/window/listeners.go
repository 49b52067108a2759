package window

import (
	"maps"
	"slices"
)

// resizeListeners dispatches size changes in registration order.
// Only touched from the GLFW thread.
type resizeListeners struct {
	next int
	fns  map[int]func(width, height int)
}

func (l *resizeListeners) add(fn func(width, height int)) (remove func()) {
	if l.fns == nil {
		l.fns = make(map[int]func(width, height int))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

func (l *resizeListeners) len() int { return len(l.fns) }

// dispatch works on a snapshot so a listener may remove itself or others
func (l *resizeListeners) dispatch(width, height int) {
	ids := slices.Sorted(maps.Keys(l.fns))
	for _, id := range ids {
		fn, ok := l.fns[id]
		if !ok {
			continue
		}
		fn(width, height)
	}
}
