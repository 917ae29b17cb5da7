package memory

import (
	"context"
	"strings"
	"sync"

	pr "github.com/unkn0wn-root/gitacache/provider"
)

// Memory is an in-process Provider backed by a map. Nothing survives a restart.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ pr.Provider = (*Memory)(nil)

func New() *Memory { return &Memory{m: make(map[string][]byte)} }

func (p *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	v, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (p *Memory) Set(_ context.Context, key string, value []byte) error {
	cp := append([]byte(nil), value...)
	p.mu.Lock()
	p.m[key] = cp
	p.mu.Unlock()
	return nil
}

func (p *Memory) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.m))
	for k := range p.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Len reports the number of stored keys.
func (p *Memory) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

func (p *Memory) Close(_ context.Context) error { return nil }
