package worker

import "slices"

// AddTicker добавляет тикер в конец списка наблюдения (если ещё нет).
func (w *MarketLoop) AddTicker(ticker string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.tickers, ticker) {
		return false
	}

	w.tickers = append(w.tickers, ticker)

	return true
}

// RemoveTicker удаляет тикер, сохраняя порядок остальных.
func (w *MarketLoop) RemoveTicker(ticker string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := slices.Index(w.tickers, ticker)
	if i < 0 {
		return false
	}

	w.tickers = slices.Delete(w.tickers, i, i+1)
	delete(w.zones, ticker)

	return true
}

// SetTickers заменяет весь список; дубликаты отбрасываются.
func (w *MarketLoop) SetTickers(tickers []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tickers = w.tickers[:0]
	for _, t := range tickers {
		if t != "" && !slices.Contains(w.tickers, t) {
			w.tickers = append(w.tickers, t)
		}
	}
}

// Tickers возвращает копию текущего списка.
func (w *MarketLoop) Tickers() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.tickers)
}
