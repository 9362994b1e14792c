package entity

import "agromarket/internal/domain/value"

// Event сообщение для подписчиков группы.
type Event struct {
	Kind  value.EventKind
	Quote Quote
	Text  string
}

func NewPriceUpdateEvent(q Quote) Event {
	return Event{Kind: value.EventKindPriceUpdate, Quote: q}
}

func NewAlertEvent(text string) Event {
	return Event{Kind: value.EventKindAlert, Text: text}
}
