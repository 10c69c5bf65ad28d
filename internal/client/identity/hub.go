package identity

import (
	"context"
	"sync"
)

// Hub fans provider changes out to observers. Each observer gets every
// change in publish order; a slow observer never blocks Publish.
//
// Until the first Publish the state is unresolved and new observers receive
// nothing; afterwards a new observer first receives the current state.
type Hub struct {
	mu       sync.Mutex
	resolved bool
	current  *User
	subs     map[*observer]struct{}
}

type observer struct {
	queue  []Change
	notify chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*observer]struct{})}
}

// Publish records u as the current user and queues the change for every
// observer.
func (h *Hub) Publish(u *User, reason ChangeReason) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.resolved = true
	h.current = u.Clone()

	for o := range h.subs {
		o.queue = append(o.queue, Change{User: u.Clone(), Reason: reason})
		select {
		case o.notify <- struct{}{}:
		default:
		}
	}
}

// Current returns the last published user and whether anything was
// published yet.
func (h *Hub) Current() (*User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Clone(), h.resolved
}

func (h *Hub) Observe(ctx context.Context) <-chan Change {
	o := &observer{notify: make(chan struct{}, 1)}

	h.mu.Lock()
	if h.resolved {
		o.queue = append(o.queue, Change{User: h.current.Clone(), Reason: ReasonRestored})
		o.notify <- struct{}{}
	}
	h.subs[o] = struct{}{}
	h.mu.Unlock()

	out := make(chan Change)
	go h.pump(ctx, o, out)
	return out
}

func (h *Hub) pump(ctx context.Context, o *observer, out chan<- Change) {
	defer func() {
		h.mu.Lock()
		delete(h.subs, o)
		h.mu.Unlock()
		close(out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.notify:
		}

		for {
			h.mu.Lock()
			if len(o.queue) == 0 {
				h.mu.Unlock()
				break
			}
			next := o.queue[0]
			o.queue = o.queue[1:]
			h.mu.Unlock()

			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
		}
	}
}
