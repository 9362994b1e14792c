// Package history хранит ограниченные окна последних цен по тикерам.
package history

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

const DefaultCapacity = 100

// PriceHistory окно цен на тикер с вытеснением самых старых значений.
// Запись выполняет только рыночный цикл, читать можно из любых горутин.
type PriceHistory struct {
	mu       sync.RWMutex
	capacity int
	windows  map[string][]decimal.Decimal
}

func New(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &PriceHistory{
		capacity: capacity,
		windows:  make(map[string][]decimal.Decimal),
	}
}

// Record добавляет цену в окно тикера. Окно создаётся при первой записи.
func (h *PriceHistory) Record(ticker string, price decimal.Decimal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.windows[ticker], price)
	if over := len(window) - h.capacity; over > 0 {
		window = append(window[:0:0], window[over:]...)
	}

	h.windows[ticker] = window
}

// Snapshot возвращает копию окна от старых к новым. Неизвестный тикер даёт пустой срез.
func (h *PriceHistory) Snapshot(ticker string) []decimal.Decimal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	window := h.windows[ticker]
	out := make([]decimal.Decimal, len(window))
	copy(out, window)

	return out
}

func (h *PriceHistory) Len(ticker string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.windows[ticker])
}

func (h *PriceHistory) Capacity() int {
	return h.capacity
}

// Tickers возвращает отсортированный список тикеров с историей.
func (h *PriceHistory) Tickers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tickers := make([]string, 0, len(h.windows))
	for t := range h.windows {
		tickers = append(tickers, t)
	}

	sort.Strings(tickers)

	return tickers
}
