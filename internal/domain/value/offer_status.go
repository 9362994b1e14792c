package value

import "fmt"

// OfferStatus состояние предложения в переговорах.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "Pending"
	OfferStatusAccepted  OfferStatus = "Accepted"
	OfferStatusRejected  OfferStatus = "Rejected"
	OfferStatusCountered OfferStatus = "Countered"
	OfferStatusCancelled OfferStatus = "Cancelled"
)

func (s OfferStatus) String() string {
	return string(s)
}

// IsTerminal возвращает true для состояний, из которых переходов нет.
func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferStatusAccepted, OfferStatusRejected, OfferStatusCancelled:
		return true
	default:
		return false
	}
}

func ParseOfferStatus(s string) (OfferStatus, error) {
	switch status := OfferStatus(s); status {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected, OfferStatusCountered, OfferStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown offer status %q", s)
	}
}
