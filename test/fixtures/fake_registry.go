// Package fixtures provides test helpers for unit and integration tests.
package fixtures

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// ErrValueUnreadable is returned for values marked unreadable.
var ErrValueUnreadable = errors.New("value unreadable")

// FakeRegistry is an in-memory domain.RegistryReader mimicking the Windows
// uninstall registry. It tracks open handles so tests can check every key
// was closed.
type FakeRegistry struct {
	mu          sync.Mutex
	locations   map[string]*FakeKey
	unreachable map[domain.RegistryRoot]error
	open        int
	opened      int
}

// NewFakeRegistry creates an empty registry; every location starts absent.
func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{
		locations:   make(map[string]*FakeKey),
		unreachable: make(map[domain.RegistryRoot]error),
	}
}

// AddLocation creates (or returns) the key at loc.
func (r *FakeRegistry) AddLocation(loc domain.RegistryLocation) *FakeKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.locations[loc.String()]; ok {
		return k
	}
	k := newFakeKey()
	r.locations[loc.String()] = k
	return k
}

// FailRoot makes every location under root fail to open with err.
func (r *FakeRegistry) FailRoot(root domain.RegistryRoot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unreachable[root] = err
}

// OpenHandles returns handles opened but not yet closed.
func (r *FakeRegistry) OpenHandles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

// HandlesOpened returns the total number of handles ever opened.
func (r *FakeRegistry) HandlesOpened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

func (r *FakeRegistry) Open(loc domain.RegistryLocation) (domain.RegistryKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.unreachable[loc.Root]; ok {
		return nil, fmt.Errorf("open %s: %w", loc, err)
	}
	k, ok := r.locations[loc.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, loc)
	}
	return r.handle(k), nil
}

// handle must be called with r.mu held.
func (r *FakeRegistry) handle(k *FakeKey) *fakeHandle {
	r.open++
	r.opened++
	return &fakeHandle{key: k, reg: r}
}

// FakeKey is one registry key with string and integer values.
type FakeKey struct {
	strings    map[string]string
	ints       map[string]uint64
	unreadable map[string]bool
	children   map[string]*FakeKey
	order      []string
	listErr    error
	openErr    error
}

func newFakeKey() *FakeKey {
	return &FakeKey{
		strings:    make(map[string]string),
		ints:       make(map[string]uint64),
		unreadable: make(map[string]bool),
		children:   make(map[string]*FakeKey),
	}
}

// AddEntry adds a child key with the given string values. Children are
// listed in insertion order.
func (k *FakeKey) AddEntry(name string, values map[string]string) *FakeKey {
	child := newFakeKey()
	for n, v := range values {
		child.strings[n] = v
	}
	if _, exists := k.children[name]; !exists {
		k.order = append(k.order, name)
	}
	k.children[name] = child
	return child
}

// SetInt sets a DWORD value.
func (k *FakeKey) SetInt(name string, v uint64) *FakeKey {
	k.ints[name] = v
	return k
}

// MarkUnreadable makes reads of name fail.
func (k *FakeKey) MarkUnreadable(name string) *FakeKey {
	k.unreadable[name] = true
	return k
}

// FailList makes SubKeyNames fail.
func (k *FakeKey) FailList(err error) *FakeKey {
	k.listErr = err
	return k
}

// FailOpen makes opening this key as a child fail.
func (k *FakeKey) FailOpen(err error) *FakeKey {
	k.openErr = err
	return k
}

type fakeHandle struct {
	key    *FakeKey
	reg    *FakeRegistry
	closed bool
}

func (h *fakeHandle) SubKeyNames() ([]string, error) {
	if h.key.listErr != nil {
		return nil, h.key.listErr
	}
	names := make([]string, len(h.key.order))
	copy(names, h.key.order)
	return names, nil
}

func (h *fakeHandle) OpenSubKey(name string) (domain.RegistryKey, error) {
	child, ok := h.key.children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, name)
	}
	if child.openErr != nil {
		return nil, child.openErr
	}
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	return h.reg.handle(child), nil
}

func (h *fakeHandle) StringValue(name string) (string, error) {
	if h.key.unreadable[name] {
		return "", ErrValueUnreadable
	}
	v, ok := h.key.strings[name]
	if !ok {
		return "", fmt.Errorf("value %s: not found", name)
	}
	return v, nil
}

func (h *fakeHandle) IntegerValue(name string) (uint64, error) {
	if h.key.unreadable[name] {
		return 0, ErrValueUnreadable
	}
	v, ok := h.key.ints[name]
	if !ok {
		return 0, fmt.Errorf("value %s: not found", name)
	}
	return v, nil
}

func (h *fakeHandle) Close() error {
	if h.closed {
		return errors.New("handle already closed")
	}
	h.closed = true
	h.reg.mu.Lock()
	h.reg.open--
	h.reg.mu.Unlock()
	return nil
}

// Ensure FakeRegistry implements domain.RegistryReader.
var _ domain.RegistryReader = (*FakeRegistry)(nil)
