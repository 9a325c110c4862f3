package assets

import "sync"

// LoadingManager tracks in-flight items and reports aggregate progress through
// its hooks. Counters are cumulative: a new batch started after completion keeps
// counting on top of the previous one.
//
// Hooks must be installed before the first item starts. They are invoked without
// the manager lock held.
type LoadingManager struct {
	mu          sync.Mutex
	isLoading   bool
	itemsLoaded int
	itemsTotal  int
	holds       int

	OnStart    func(url string, itemsLoaded, itemsTotal int)
	OnProgress func(url string, itemsLoaded, itemsTotal int)
	OnLoad     func()
	OnError    func(url string)
}

func NewLoadingManager() *LoadingManager {
	return &LoadingManager{}
}

// ItemStart registers one more item. The first item of a batch fires OnStart.
func (m *LoadingManager) ItemStart(url string) {
	m.mu.Lock()
	m.itemsTotal++
	first := !m.isLoading
	m.isLoading = true
	loaded, total := m.itemsLoaded, m.itemsTotal
	m.mu.Unlock()

	if first && m.OnStart != nil {
		m.OnStart(url, loaded, total)
	}
}

// ItemEnd marks one item as loaded. When every started item is loaded OnLoad fires.
func (m *LoadingManager) ItemEnd(url string) {
	m.mu.Lock()
	m.itemsLoaded++
	loaded, total := m.itemsLoaded, m.itemsTotal
	done := loaded == total && m.holds == 0
	if done {
		m.isLoading = false
	}
	m.mu.Unlock()

	if m.OnProgress != nil {
		m.OnProgress(url, loaded, total)
	}
	if done && m.OnLoad != nil {
		m.OnLoad()
	}
}

// Hold keeps the current batch open until the matching Release, even when
// every started item has already ended.
func (m *LoadingManager) Hold() {
	m.mu.Lock()
	m.holds++
	m.mu.Unlock()
}

// Release drops one Hold. OnLoad fires here if the last hold goes away after
// every started item ended.
func (m *LoadingManager) Release() {
	m.mu.Lock()
	if m.holds > 0 {
		m.holds--
	}
	done := m.holds == 0 && m.isLoading && m.itemsLoaded == m.itemsTotal
	if done {
		m.isLoading = false
	}
	m.mu.Unlock()

	if done && m.OnLoad != nil {
		m.OnLoad()
	}
}

// ItemError reports a failed item. The item is never counted as loaded, so a
// batch with a failed item does not complete.
func (m *LoadingManager) ItemError(url string) {
	if m.OnError != nil {
		m.OnError(url)
	}
}

// Progress returns the cumulative loaded and total counters.
func (m *LoadingManager) Progress() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsLoaded, m.itemsTotal
}

func (m *LoadingManager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLoading
}
