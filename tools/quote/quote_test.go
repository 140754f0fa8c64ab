package quote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mohammad-safakhou/deepresearch/internal/cache"
	"github.com/mohammad-safakhou/deepresearch/tools/quote"
	"github.com/mohammad-safakhou/deepresearch/tools/quote/models"
)

type countingProvider struct {
	quotes, histories int
	fail              bool
}

func (p *countingProvider) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	p.quotes++
	if p.fail {
		return models.Quote{Symbol: symbol}, errors.New("upstream down")
	}
	price := 10.0
	return models.Quote{Symbol: symbol, Price: &price}, nil
}

func (p *countingProvider) History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	p.histories++
	return []models.Bar{{Date: from, Close: 1}, {Date: to, Close: 2}}, nil
}

func TestCachedServesRepeatsFromCache(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{}
	p := quote.WithCache(next, cache.NewMemory(), time.Minute, nil)

	for range 3 {
		q, err := p.Quote(ctx, "infy.ns")
		gt.NoError(t, err)
		gt.Equal(t, *q.Price, 10.0)
	}
	gt.Equal(t, next.quotes, 1)

	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for range 2 {
		bars, err := p.History(ctx, "INFY.NS", to.AddDate(-1, 0, 0), to)
		gt.NoError(t, err)
		gt.A(t, bars).Length(2)
	}
	gt.Equal(t, next.histories, 1)
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{fail: true}
	p := quote.WithCache(next, cache.NewMemory(), time.Minute, nil)

	_, err := p.Quote(ctx, "TCS.NS")
	gt.Error(t, err)
	_, err = p.Quote(ctx, "TCS.NS")
	gt.Error(t, err)
	gt.Equal(t, next.quotes, 2)
}

func TestWithNilCacheIsPassthrough(t *testing.T) {
	next := &countingProvider{}
	p := quote.WithCache(next, nil, time.Minute, nil)
	_, ok := p.(*countingProvider)
	gt.True(t, ok)
}
