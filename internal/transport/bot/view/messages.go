package view

const StartMessage = `🌱 <b>Agromarket</b>

Команды оператора:
/status — состояние рыночного цикла
/watchlist — наблюдаемые тикеры
/watch <code>TICKER</code> — добавить тикер
/unwatch <code>TICKER</code> — убрать тикер
/setwatch <code>T1 T2 ...</code> — заменить список
/quote <code>TICKER</code> — последняя котировка
/startloop, /stoploop — управление циклом`

const (
	LoopRunning = "🟢 работает"
	LoopStopped = "🔴 остановлен"

	LoopAlreadyRunning = "Рыночный цикл уже запущен!"
	LoopNotRunning     = "Рыночный цикл не запущен!"
	LoopStarted        = "Рыночный цикл запущен!"
	LoopHalted         = "Рыночный цикл остановлен!"
	LoopStartFailed    = "Ошибка запуска цикла: %v"

	StatusTemplate = `📊 <b>Статус рынка</b>

🔁 <b>Цикл:</b> %s
⏱ <b>Интервал:</b> %s
📈 <b>Тикеры:</b> %s
👥 <b>Подписчики push:</b> %d`

	WatchUsage     = "❌ Использование: /watch <code>TICKER</code>"
	UnwatchUsage   = "❌ Использование: /unwatch <code>TICKER</code>"
	SetWatchUsage  = "❌ Использование: /setwatch <code>T1</code> <code>T2</code> ...\n\nПример: /setwatch KC C8 USDBRL"
	QuoteUsage     = "❌ Использование: /quote <code>TICKER</code>"
	InvalidTicker  = "❌ Неверный тикер <code>%s</code>"
	TickerAdded    = "✅ Тикер <code>%s</code> добавлен"
	TickerExists   = "⚠️ Тикер <code>%s</code> уже в списке"
	TickerRemoved  = "✅ Тикер <code>%s</code> удалён"
	TickerMissing  = "⚠️ Тикер <code>%s</code> не найден в списке"
	WatchListEmpty = "📋 <b>Список наблюдения пуст</b>\n\nДобавить тикер: /watch <code>TICKER</code>"
	WatchListTitle = "📋 <b>Наблюдаемые тикеры (%d):</b>\n\n"
	WatchListItem  = "%d. <code>%s</code>\n"
	WatchListSet   = "✅ Установлено %d тикеров для наблюдения:\n\n"
	SkippedTickers = "\n⚠️ Пропущены неверные тикеры: %s"
	NoValidTickers = "❌ Не удалось распознать ни одного тикера"

	QuoteTemplate = "💹 <b>%s</b>: %s (%s%%)\n🕒 %s"
	QuoteNotFound = "⚠️ Котировка <code>%s</code> ещё не получена"
	QuoteFailed   = "❌ Не удалось получить котировку"
)
