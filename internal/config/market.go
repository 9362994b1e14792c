package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProviderYahoo     = "yahoo"
	ProviderSimulated = "simulated"
)

type Market struct {
	Interval      time.Duration `env:"MARKET_INTERVAL" envDefault:"15s"`
	Tickers       []string      `env:"MARKET_TICKERS" envSeparator:"," envDefault:"KC,C8,USDBRL,B3"`
	HistoryDepth  int           `env:"MARKET_HISTORY_DEPTH" envDefault:"100"`
	RSIPeriod     int           `env:"MARKET_RSI_PERIOD" envDefault:"14"`
	Overbought    float64       `env:"MARKET_RSI_OVERBOUGHT" envDefault:"70"`
	Oversold      float64       `env:"MARKET_RSI_OVERSOLD" envDefault:"30"`
	AlertBand     float64       `env:"MARKET_ALERT_BAND" envDefault:"0.005"`
	BagTicker     string        `env:"MARKET_BAG_TICKER" envDefault:"KC"`
	DollarTicker  string        `env:"MARKET_DOLLAR_TICKER" envDefault:"USDBRL"`
	BagAdjustment float64       `env:"MARKET_BAG_ADJUSTMENT" envDefault:"1"`

	Provider          string        `env:"QUOTES_PROVIDER" envDefault:"yahoo"`
	YahooBaseURL      string        `env:"QUOTES_YAHOO_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	RequestTimeout    time.Duration `env:"QUOTES_REQUEST_TIMEOUT" envDefault:"10s"`
	RequestsPerMin    int           `env:"QUOTES_REQUESTS_PER_MIN" envDefault:"30"`
	SymbolsFile       string        `env:"QUOTES_SYMBOLS_FILE"`
	SimulatedSeed     uint64        `env:"QUOTES_SIMULATED_SEED" envDefault:"42"`
	SimulatedInterval time.Duration `env:"QUOTES_SIMULATED_INTERVAL" envDefault:"3s"`
}

// LoopInterval интервал рыночного цикла; симулятор тикает чаще реального поставщика.
func (m Market) LoopInterval() time.Duration {
	if m.Provider == ProviderSimulated && m.SimulatedInterval > 0 {
		return m.SimulatedInterval
	}

	return m.Interval
}

func (m Market) validate() error {
	switch {
	case m.Provider != ProviderYahoo && m.Provider != ProviderSimulated:
		return fmt.Errorf("unknown quotes provider %q", m.Provider)
	case m.Interval <= 0:
		return fmt.Errorf("interval must be positive, got %s", m.Interval)
	case m.RSIPeriod < 1:
		return fmt.Errorf("rsi period must be at least 1, got %d", m.RSIPeriod)
	case m.Oversold <= 0 || m.Overbought <= m.Oversold || m.Overbought >= 100:
		return fmt.Errorf("rsi thresholds must satisfy 0 < oversold < overbought < 100, got %v/%v", m.Oversold, m.Overbought)
	case m.RequestsPerMin <= 0:
		return fmt.Errorf("requests per minute must be positive, got %d", m.RequestsPerMin)
	case m.HistoryDepth < m.RSIPeriod+1:
		return fmt.Errorf("history depth %d is too small for rsi period %d", m.HistoryDepth, m.RSIPeriod)
	}

	return nil
}

func (m Market) OverboughtDecimal() decimal.Decimal {
	return decimal.NewFromFloat(m.Overbought)
}

func (m Market) OversoldDecimal() decimal.Decimal {
	return decimal.NewFromFloat(m.Oversold)
}

func (m Market) AlertBandDecimal() decimal.Decimal {
	return decimal.NewFromFloat(m.AlertBand)
}

func (m Market) BagAdjustmentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(m.BagAdjustment)
}
