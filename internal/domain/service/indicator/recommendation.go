package indicator

import "github.com/shopspring/decimal"

type Signal string

const (
	SignalNeutral    Signal = "Neutral"
	SignalBuy        Signal = "Buy"
	SignalStrongBuy  Signal = "StrongBuy"
	SignalSell       Signal = "Sell"
	SignalStrongSell Signal = "StrongSell"
)

type Recommendation struct {
	Signal  Signal          `json:"signal"`
	Message string          `json:"message"`
	RSI     decimal.Decimal `json:"rsi"`
	Color   string          `json:"color"`
}

//nolint:gochecknoglobals
var (
	strongBuyLevel  = decimal.NewFromInt(20)
	buyLevel        = decimal.NewFromInt(30)
	sellLevel       = decimal.NewFromInt(70)
	strongSellLevel = decimal.NewFromInt(80)
)

func Recommend(rsi decimal.Decimal) Recommendation {
	r := Recommendation{RSI: rsi.Round(2)}

	switch {
	case rsi.LessThanOrEqual(strongBuyLevel):
		r.Signal, r.Color = SignalStrongBuy, "success"
		r.Message = "Market heavily oversold, strong buying opportunity"
	case rsi.LessThanOrEqual(buyLevel):
		r.Signal, r.Color = SignalBuy, "success"
		r.Message = "Market oversold, consider buying"
	case rsi.GreaterThanOrEqual(strongSellLevel):
		r.Signal, r.Color = SignalStrongSell, "danger"
		r.Message = "Market heavily overbought, strong selling opportunity"
	case rsi.GreaterThanOrEqual(sellLevel):
		r.Signal, r.Color = SignalSell, "danger"
		r.Message = "Market overbought, consider selling"
	default:
		r.Signal, r.Color = SignalNeutral, "secondary"
		r.Message = "Market in equilibrium"
	}

	return r
}

// Zone положение RSI относительно порогов.
type Zone int

const (
	ZoneNeutral Zone = iota
	ZoneOversold
	ZoneOverbought
)

func ClassifyZone(rsi, overbought, oversold decimal.Decimal) Zone {
	switch {
	case rsi.GreaterThanOrEqual(overbought):
		return ZoneOverbought
	case rsi.LessThanOrEqual(oversold):
		return ZoneOversold
	default:
		return ZoneNeutral
	}
}

func (z Zone) String() string {
	switch z {
	case ZoneOversold:
		return "oversold"
	case ZoneOverbought:
		return "overbought"
	default:
		return "neutral"
	}
}
