package cache

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const DefaultQuotesKey = "agromarket:quotes:latest"

// QuoteCache последние котировки по тикерам в хеше Redis.
type QuoteCache struct {
	client *redis.Client
	key    string
}

func NewQuoteCache(client *redis.Client, key string) *QuoteCache {
	if key == "" {
		key = DefaultQuotesKey
	}

	return &QuoteCache{client: client, key: key}
}

func (c *QuoteCache) Store(ctx context.Context, quotes []entity.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	fields := make(map[string]any, len(quotes))
	for _, q := range quotes {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		fields[q.Ticker] = raw
	}

	if err := c.client.HSet(ctx, c.key, fields).Err(); err != nil {
		return fmt.Errorf("redis.HSet: %w", err)
	}

	return nil
}

func (c *QuoteCache) All(ctx context.Context) (map[string]entity.Quote, error) {
	raw, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to read quote cache")
	}

	quotes := make(map[string]entity.Quote, len(raw))
	for ticker, value := range raw {
		var q entity.Quote
		if err := json.UnmarshalFromString(value, &q); err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode cached quote")
		}
		quotes[ticker] = q
	}

	return quotes, nil
}

func (c *QuoteCache) Get(ctx context.Context, ticker string) (*entity.Quote, error) {
	value, err := c.client.HGet(ctx, c.key, ticker).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewError(errcodes.NotFound, "quote not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to read quote cache")
	}

	var q entity.Quote
	if err := json.UnmarshalFromString(value, &q); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode cached quote")
	}

	return &q, nil
}
