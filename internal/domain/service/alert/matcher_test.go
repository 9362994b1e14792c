package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agromarket/internal/domain/entity"
)

func newAlert(id, owner int64, ticker, target string) entity.Alert {
	return entity.Alert{
		ID:            id,
		OwnerID:       owner,
		Ticker:        ticker,
		CommodityName: "Café Arábica",
		TargetPrice:   decimal.RequireFromString(target),
		Active:        true,
		CreatedAt:     time.Now(),
	}
}

func newQuote(ticker, price string) entity.Quote {
	return entity.Quote{
		Ticker:    ticker,
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now(),
	}
}

func TestMatcherEvaluate(t *testing.T) {
	testCases := []struct {
		name          string
		alerts        []entity.Alert
		quote         entity.Quote
		expectedFired int
		stillActive   []int64
	}{
		{
			name:          "Quote inside band fires",
			alerts:        []entity.Alert{newAlert(1, 10, "KC", "150")},
			quote:         newQuote("KC", "150.5"),
			expectedFired: 1,
		},
		{
			name:          "Quote outside band keeps alert",
			alerts:        []entity.Alert{newAlert(1, 10, "KC", "150")},
			quote:         newQuote("KC", "152"),
			expectedFired: 0,
			stillActive:   []int64{1},
		},
		{
			name: "Several alerts fire independently",
			alerts: []entity.Alert{
				newAlert(1, 10, "KC", "150"),
				newAlert(2, 11, "KC", "150.2"),
				newAlert(3, 12, "KC", "200"),
			},
			quote:         newQuote("KC", "150.1"),
			expectedFired: 2,
			stillActive:   []int64{3},
		},
		{
			name:          "Other ticker is ignored",
			alerts:        []entity.Alert{newAlert(1, 10, "C8", "150")},
			quote:         newQuote("KC", "150"),
			expectedFired: 0,
			stillActive:   []int64{1},
		},
		{
			name:          "Non-positive target is skipped",
			alerts:        []entity.Alert{newAlert(1, 10, "KC", "0")},
			quote:         newQuote("KC", "0"),
			expectedFired: 0,
			stillActive:   []int64{1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			repo := newMemoryRepo(tc.alerts...)
			notifier := &recordingNotifier{}
			matcher := NewMatcher(repo, notifier)

			fired, err := matcher.Evaluate(context.Background(), tc.quote)
			rq.NoError(err)
			rq.Equal(tc.expectedFired, fired)
			rq.Equal(tc.expectedFired, notifier.count())

			for _, id := range tc.stillActive {
				a, ok := repo.get(id)
				rq.True(ok)
				rq.True(a.Active)
			}
		})
	}
}

func TestMatcherFiresOnlyOnce(t *testing.T) {
	rq := require.New(t)

	repo := newMemoryRepo(newAlert(1, 10, "KC", "150"))
	notifier := &recordingNotifier{}
	matcher := NewMatcher(repo, notifier)

	ctx := context.Background()

	fired, err := matcher.Evaluate(ctx, newQuote("KC", "150.5"))
	rq.NoError(err)
	rq.Equal(1, fired)

	fired, err = matcher.Evaluate(ctx, newQuote("KC", "150"))
	rq.NoError(err)
	rq.Equal(0, fired)

	rq.Equal(1, notifier.count())
	rq.Equal(int64(10), notifier.sent[0].userID)
	rq.Contains(notifier.sent[0].text, "150.5")

	a, _ := repo.get(1)
	rq.False(a.Active)
}

func TestMatcherConcurrentEvaluations(t *testing.T) {
	rq := require.New(t)

	repo := newMemoryRepo(newAlert(1, 10, "KC", "150"), newAlert(2, 11, "KC", "150"))
	notifier := &recordingNotifier{}
	matcher := NewMatcher(repo, notifier)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
		errs  []error
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			fired, err := matcher.Evaluate(context.Background(), newQuote("KC", "150"))

			mu.Lock()
			total += fired
			if err != nil {
				errs = append(errs, err)
			}
			mu.Unlock()
		}()
	}

	wg.Wait()

	rq.Empty(errs)
	rq.Equal(2, total)
	rq.Equal(2, notifier.count())
}

func TestMatcherSkipsAlertDeletedMidPass(t *testing.T) {
	rq := require.New(t)

	repo := newMemoryRepo(newAlert(1, 10, "KC", "150"), newAlert(2, 11, "KC", "150"))
	repo.beforeDeactivate = func() {
		_ = repo.Delete(context.Background(), 1)
	}

	notifier := &recordingNotifier{}

	fired, err := NewMatcher(repo, notifier).Evaluate(context.Background(), newQuote("KC", "150"))
	rq.NoError(err)
	rq.Equal(1, fired)
	rq.Equal(1, notifier.count())
	rq.Equal(int64(11), notifier.sent[0].userID)
}

func TestMatcherCustomBand(t *testing.T) {
	rq := require.New(t)

	repo := newMemoryRepo(newAlert(1, 10, "KC", "100"))
	matcher := NewMatcher(repo, &recordingNotifier{}).WithTriggerBand(decimal.RequireFromString("0.02"))

	fired, err := matcher.Evaluate(context.Background(), newQuote("KC", "101.5"))
	rq.NoError(err)
	rq.Equal(1, fired)
}
