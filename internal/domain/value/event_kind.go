package value

// EventKind тип события, доставляемого подписчикам.
type EventKind string

const (
	EventKindPriceUpdate EventKind = "priceUpdate"
	EventKindAlert       EventKind = "alert"
)
