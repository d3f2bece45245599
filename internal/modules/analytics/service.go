package analytics

import (
	"context"
	"time"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

type Service interface {
	// Dashboard recomputes every figure from the ledger on each call.
	Dashboard(ctx context.Context, days, top int) (*Dashboard, error)
}

type service struct {
	ledger  ledger.Repository
	catalog catalog.Repository
	clock   func() time.Time
	loc     *time.Location
}

// NewService reads from the given stores; loc sets the calendar day boundary.
func NewService(led ledger.Repository, cat catalog.Repository, loc *time.Location, clock func() time.Time) Service {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &service{ledger: led, catalog: cat, clock: clock, loc: loc}
}

func (s *service) Dashboard(ctx context.Context, days, top int) (*Dashboard, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if top <= 0 {
		top = DefaultTop
	}
	txs, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock().In(s.loc)
	return &Dashboard{
		Totals:       ComputeTotals(txs, now),
		ProductCount: products,
		Daily:        DailySeries(txs, now, days),
		TopProducts:  TopProducts(txs, top),
		PaymentMix:   PaymentMix(txs),
	}, nil
}
