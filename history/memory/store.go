package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-g-r/relay/history"
)

type memoryStore struct {
	options   history.Options
	nextId    int64
	exchanges []history.Exchange
	mtx       sync.RWMutex
}

func (s *memoryStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *memoryStore) Append(ctx context.Context, exchange history.Exchange) error {
	if len(exchange.Embedding) != s.options.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", history.ErrDimensionMismatch, len(exchange.Embedding), s.options.Dimensions)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextId++

	cpy := make([]float32, len(exchange.Embedding))
	copy(cpy, exchange.Embedding)

	exchange.Id = s.nextId
	exchange.Embedding = cpy
	exchange.CreatedAt = time.Now().UTC()

	s.exchanges = append(s.exchanges, exchange)

	return nil
}

func (s *memoryStore) QueryNearest(ctx context.Context, userId string, vector []float32, limit int) ([]history.Exchange, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	type scored struct {
		exchange history.Exchange
		distance float64
	}

	var candidates []scored

	for _, x := range s.exchanges {
		if x.UserId != userId {
			continue
		}
		candidates = append(candidates, scored{
			exchange: x,
			distance: l2Distance(vector, x.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].exchange.Id < candidates[j].exchange.Id
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	exchanges := make([]history.Exchange, 0, len(candidates))
	for _, c := range candidates {
		exchanges = append(exchanges, c.exchange)
	}

	return exchanges, nil
}

func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}

func NewStore(opts ...history.Option) history.Store {
	options := history.NewOptions(opts...)

	s := &memoryStore{
		options:   options,
		exchanges: []history.Exchange{},
		mtx:       sync.RWMutex{},
	}

	return s
}
