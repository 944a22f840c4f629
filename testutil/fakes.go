// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/danielhkuo/treat-pageant/payments"
	"github.com/danielhkuo/treat-pageant/storage"
)

// MemStore is an in-memory storage.ObjectStore
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// FailPut makes Put fail for names with this prefix
	FailPut string
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *MemStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if m.FailPut != "" && strings.HasPrefix(name, m.FailPut) {
		return "", errors.New("storage unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	m.types[name] = contentType
	return m.PublicURL(name), nil
}

func (m *MemStore) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok, nil
}

func (m *MemStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, name)
	delete(m.types, name)
	return nil
}

func (m *MemStore) List(ctx context.Context, prefix string, limit int) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Object
	for name, data := range m.objects {
		if strings.HasPrefix(name, prefix) {
			out = append(out, storage.Object{Name: name, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) PublicURL(name string) string {
	return "https://files.test/" + name
}

// Names lists stored object names with the given prefix
func (m *MemStore) Names(prefix string) []string {
	objs, _ := m.List(context.Background(), prefix, 0)
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.Name
	}
	return names
}

// ContentType returns the content type an object was stored with
func (m *MemStore) ContentType(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[name]
}

// FailingProvider is a payments.Provider whose gateway is down
type FailingProvider struct {
	Err error
}

func (p FailingProvider) Name() string { return "failing" }

func (p FailingProvider) CreatePayment(ctx context.Context, req payments.CheckoutRequest) (payments.Checkout, error) {
	return payments.Checkout{}, p.Err
}

func (p FailingProvider) HandleWebhook(ctx context.Context, body []byte, headers map[string]string) (payments.Event, error) {
	return payments.Event{}, payments.ErrInvalidSignature
}

// Notifications records notify.Notifier calls
type Notifications struct {
	mu    sync.Mutex
	texts []string
}

func (n *Notifications) Notify(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func (n *Notifications) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}
