package session

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnboundKey = errors.New("key is not bound")

// Command is the action bound to a key.
type Command func() error

// Dispatcher routes key presses to commands. Bindings are owned by whoever
// registered them and released through the returned function.
type Dispatcher struct {
	mu       sync.Mutex
	bindings map[string]binding
	seq      uint64
}

type binding struct {
	id  uint64
	cmd Command
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{bindings: make(map[string]binding)}
}

// Bind registers cmd for key, replacing any earlier binding. The returned
// release removes it unless the key has been rebound since.
func (d *Dispatcher) Bind(key string, cmd Command) (release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	id := d.seq
	d.bindings[key] = binding{id: id, cmd: cmd}
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if b, ok := d.bindings[key]; ok && b.id == id {
			delete(d.bindings, key)
		}
	}
}

// Bound reports whether key has a command.
func (d *Dispatcher) Bound(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.bindings[key]
	return ok
}

// Dispatch runs the command bound to key.
func (d *Dispatcher) Dispatch(key string) error {
	d.mu.Lock()
	b, ok := d.bindings[key]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnboundKey, key)
	}
	return b.cmd()
}
