package session

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// ArticleSource resolves an article snapshot for a line being added. The
// second return value reports whether the article exists.
type ArticleSource interface {
	Lookup(ctx context.Context, articleID int64) (pricing.Article, bool, error)
}

// Service exposes the cart accumulator operations over persisted sessions.
// Every mutation writes the whole session through to the store.
type Service struct {
	Store    *Store
	Articles ArticleSource
	Rates    pricing.RateTable
	Base     pricing.Currency
}

func (s *Service) rates() pricing.RateTable {
	if s.Rates == nil {
		return pricing.DefaultRates()
	}
	return s.Rates
}

func (s *Service) base() pricing.Currency {
	if s.Base == "" {
		return pricing.PYG
	}
	return s.Base
}

// Get loads the session cart, or an empty cart in the base currency when the
// session has no usable state.
func (s *Service) Get(ctx context.Context, id string) (*pricing.Cart, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("session service not configured")
	}
	state, ok, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return pricing.NewCart(s.rates(), s.base())
	}
	cart, err := pricing.Restore(s.rates(), state.Currency, state.DiscountMode, state.DiscountValue, state.Lines)
	if err != nil {
		// persisted state predates the current rate table; start over
		return pricing.NewCart(s.rates(), s.base())
	}
	return cart, nil
}

// AddLine resolves the article and appends a snapshot line. An unknown
// article id behaves like an unresolved selection.
func (s *Service) AddLine(ctx context.Context, id string, articleID int64, quantity int) (pricing.LineItem, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return pricing.LineItem{}, err
	}
	var article *pricing.Article
	if s.Articles != nil && articleID > 0 {
		found, ok, err := s.Articles.Lookup(ctx, articleID)
		if err != nil {
			return pricing.LineItem{}, err
		}
		if ok {
			article = &found
		}
	}
	line, err := cart.AddLine(article, quantity)
	if err != nil {
		return pricing.LineItem{}, err
	}
	if err := s.save(ctx, id, cart); err != nil {
		return pricing.LineItem{}, err
	}
	return line, nil
}

// RemoveLine drops the line at the given position.
func (s *Service) RemoveLine(ctx context.Context, id string, index int) error {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := cart.RemoveLine(index); err != nil {
		return err
	}
	return s.save(ctx, id, cart)
}

// SetCurrency switches the display currency, re-deriving every line.
func (s *Service) SetCurrency(ctx context.Context, id string, currency pricing.Currency) error {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := cart.SetCurrency(currency); err != nil {
		return err
	}
	return s.save(ctx, id, cart)
}

// SetDiscount stores the cart-level discount.
func (s *Service) SetDiscount(ctx context.Context, id string, mode pricing.DiscountMode, value decimal.Decimal) error {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := cart.SetDiscount(mode, value); err != nil {
		return err
	}
	return s.save(ctx, id, cart)
}

// Clear empties and removes the session.
func (s *Service) Clear(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("session service not configured")
	}
	return s.Store.Clear(ctx, id)
}

func (s *Service) save(ctx context.Context, id string, cart *pricing.Cart) error {
	return s.Store.Save(ctx, id, State{
		Currency:      cart.Currency,
		DiscountMode:  cart.DiscountMode,
		DiscountValue: cart.DiscountValue,
		Lines:         cart.Lines,
	})
}
