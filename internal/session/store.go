package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// State is the persisted shape of a cart session. It is a recovery mechanism
// only; the submitted sale is authoritative. There is no schema version, so
// Load validates the shape and discards anything it does not recognise.
type State struct {
	Currency      pricing.Currency     `json:"currency"`
	DiscountMode  pricing.DiscountMode `json:"discountMode"`
	DiscountValue decimal.Decimal      `json:"discountValue"`
	Lines         []pricing.LineItem   `json:"lines"`
}

// Store persists cart sessions as JSON blobs in Redis.
type Store struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func (s *Store) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "pos:cart:"
	}
	return prefix + id
}

func (s *Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Load fetches the persisted state for a session. A missing key, a corrupt
// payload, or an unexpected shape all degrade to "no state" so an interrupted
// session restarts empty instead of failing.
func (s *Store) Load(ctx context.Context, id string) (State, bool, error) {
	if s == nil || s.Client == nil || id == "" {
		return State{}, false, nil
	}
	data, err := s.Client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false, nil
	}
	if !validShape(state) {
		return State{}, false, nil
	}
	return state, true, nil
}

// Save writes the full state through on every mutation.
func (s *Store) Save(ctx context.Context, id string, state State) error {
	if s == nil || s.Client == nil || id == "" {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(id), data, s.ttl()).Err()
}

// Clear removes the persisted state, used after a successful submission or an
// explicit cancel.
func (s *Store) Clear(ctx context.Context, id string) error {
	if s == nil || s.Client == nil || id == "" {
		return nil
	}
	return s.Client.Del(ctx, s.key(id)).Err()
}

func validShape(state State) bool {
	if state.Currency == "" {
		return false
	}
	if state.DiscountValue.IsNegative() {
		return false
	}
	for _, line := range state.Lines {
		if line.ArticleID <= 0 || line.Quantity < 1 {
			return false
		}
		if line.UnitPriceRef.IsNegative() {
			return false
		}
	}
	return true
}
