package value

import "strings"

// Decision ответ стороны на текущее предложение.
type Decision string

const (
	DecisionAccept  Decision = "Accepted"
	DecisionReject  Decision = "Rejected"
	DecisionCounter Decision = "Countered"
)

// ParseDecision принимает как "Accepted", так и "accept".
func ParseDecision(s string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted", "accept":
		return DecisionAccept, true
	case "rejected", "reject":
		return DecisionReject, true
	case "countered", "counter":
		return DecisionCounter, true
	default:
		return "", false
	}
}

func (d Decision) Status() OfferStatus {
	return OfferStatus(d)
}
