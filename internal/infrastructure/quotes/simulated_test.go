package quotes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"agromarket/internal/domain"
	"agromarket/pkg/errcodes"
)

func TestSimulatedRandomWalk(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	s := NewSimulated(42, nil, 0.01)
	start := DefaultSimulatedPrices()["KC"]

	prev := start
	for range 50 {
		quotes, err := s.GetLatestQuotes(ctx, []string{"KC", "SOJA"})
		rq.NoError(err)
		rq.Len(quotes, 1)

		price := quotes["KC"].Price
		rq.True(price.IsPositive())

		step := price.Sub(prev).Abs().Div(prev).InexactFloat64()
		rq.LessOrEqual(step, 0.0101)

		prev = price
	}
}

func TestSimulatedHistory(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	s := NewSimulated(7, nil, 0.01)

	points, err := s.GetHistory(ctx, "USDBRL", "1h", "1d")
	rq.NoError(err)
	rq.Len(points, 24)

	for i := 1; i < len(points); i++ {
		rq.Equal(int64(3600), points[i].Time-points[i-1].Time)
	}

	_, err = s.GetHistory(ctx, "SOJA", "1h", "1d")
	rq.True(domain.HasCode(err, errcodes.InvalidTicker))

	_, err = s.GetHistory(ctx, "KC", "1h", "forever")
	rq.True(domain.HasCode(err, errcodes.ValidationError))
}

func TestLoadSymbolMap(t *testing.T) {
	rq := require.New(t)

	symbols, err := LoadSymbolMap("")
	rq.NoError(err)
	rq.Equal(DefaultSymbols(), symbols)

	path := filepath.Join(t.TempDir(), "symbols.yaml")
	rq.NoError(os.WriteFile(path, []byte("symbols:\n  C8: \"KC2=F\"\n  SOJA: \"ZS=F\"\n"), 0o600))

	symbols, err = LoadSymbolMap(path)
	rq.NoError(err)
	rq.Equal("KC2=F", symbols["C8"])
	rq.Equal("ZS=F", symbols["SOJA"])
	rq.Equal("KC=F", symbols["KC"])
	rq.Equal("SOJA", symbols.Reverse()["ZS=F"])

	_, err = LoadSymbolMap(filepath.Join(t.TempDir(), "missing.yaml"))
	rq.Error(err)
}
