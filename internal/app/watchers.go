package app

import "sync"

// watchers fans accepted turns out to every connection observing a session.
type watchers struct {
	mu     sync.Mutex
	byID   map[string]map[chan Turn]struct{}
	buffer int
}

func newWatchers() *watchers {
	return &watchers{byID: make(map[string]map[chan Turn]struct{}), buffer: 8}
}

func (w *watchers) subscribe(id string, initial Turn) (<-chan Turn, func()) {
	ch := make(chan Turn, w.buffer)
	ch <- initial

	w.mu.Lock()
	subs, ok := w.byID[id]
	if !ok {
		subs = make(map[chan Turn]struct{})
		w.byID[id] = subs
	}
	subs[ch] = struct{}{}
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.removeLocked(id, ch)
	}
	return ch, cancel
}

func (w *watchers) publish(id string, turn Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.byID[id] {
		select {
		case ch <- turn:
		default:
			// slow watcher: drop its oldest turn
			select {
			case <-ch:
			default:
			}
			ch <- turn
		}
	}
}

// close ends every subscription of a session.
func (w *watchers) close(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.byID[id] {
		w.removeLocked(id, ch)
	}
}

func (w *watchers) removeLocked(id string, ch chan Turn) {
	subs, ok := w.byID[id]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(w.byID, id)
	}
}
