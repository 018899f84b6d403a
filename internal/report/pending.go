package report

import (
	"sort"
	"sync"
)

// PendingSet идентификаторы отчётов с незавершённой мутацией.
type PendingSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewPendingSet создаёт пустое множество.
func NewPendingSet() *PendingSet {
	return &PendingSet{ids: make(map[string]struct{})}
}

// Begin помечает id; false, если мутация для id уже идёт.
func (p *PendingSet) Begin(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; ok {
		return false
	}
	p.ids[id] = struct{}{}
	return true
}

// End снимает пометку.
func (p *PendingSet) End(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, id)
}

// Has сообщает, идёт ли мутация для id.
func (p *PendingSet) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[id]
	return ok
}

// IDs возвращает отсортированный список.
func (p *PendingSet) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
