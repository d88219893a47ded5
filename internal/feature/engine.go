// Package feature implements the FeatureEngine: one instance per symbol,
// folding the UnifiedEvent stream into per-bar accumulators and emitting
// finalized Bars (spec.md §4.2).
package feature

import (
	"time"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/logging"
	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/xerrors"
)

// Engine owns one symbol's open Bar and feature accumulators. It is not
// safe for concurrent use; the pipeline creates exactly one Engine per
// symbol and feeds every Engine from its single dispatch task.
type Engine struct {
	symbol string
	cfg    *config.Config
	log    logging.Logger

	open *types.Bar

	vwapAcc     vwapAccumulator
	atr         wilderATR
	prevVVA     *types.ValueArea
	trend       *trendConfirmer
	price       priceTracker

	lastFinalized *types.Bar
}

// NewEngine builds a FeatureEngine for one symbol.
func NewEngine(symbol string, cfg *config.Config, log logging.Logger) (*Engine, error) {
	tc, err := newTrendConfirmer()
	if err != nil {
		return nil, xerrors.Config("feature.NewEngine", err)
	}
	return &Engine{
		symbol: symbol,
		cfg:    cfg,
		log:    log.With(logging.String("symbol", symbol)),
		atr:    newWilderATR(cfg.ATRPeriod),
		trend:  tc,
	}, nil
}

// OnEvent folds one UnifiedEvent into the open Bar. It returns the finalized
// Bar (and true) if the event closed out a bar_index; otherwise it returns
// the zero Bar and false. This mirrors the contract `on_event(e) ->
// Option<Bar>` from spec.md §4.2.
func (e *Engine) OnEvent(ev types.UnifiedEvent) (types.Bar, bool) {
	meta := ev.Record.Meta()

	if e.open == nil {
		e.openBar(meta)
		e.apply(ev.Record)
		return types.Bar{}, false
	}

	switch {
	case meta.BarIndex > e.open.BarIndex:
		finalized := e.finalize()
		e.openBar(meta)
		e.apply(ev.Record)
		return finalized, true

	case meta.BarIndex < e.open.BarIndex:
		// Late record for a bar_index that already closed: spec.md §3
		// requires this arrive as a new revision of that Bar, not a mutation
		// of the in-progress one. Only the most recently finalized Bar is
		// retained to revise against; a regression deeper than that has no
		// state left to revise and is dropped after the warning.
		e.log.Warn("non-monotonic bar_index", logging.Int("bar_index", int(meta.BarIndex)))
		if e.lastFinalized != nil && e.lastFinalized.BarIndex == meta.BarIndex {
			revised := e.lastFinalized.Clone()
			revised.Revision++
			e.lastFinalized = &revised
			return revised, true
		}
		return types.Bar{}, false

	default:
		e.apply(ev.Record)
		return types.Bar{}, false
	}
}

func (e *Engine) openBar(meta types.RecordMeta) {
	e.open = &types.Bar{
		Symbol:    meta.Symbol,
		Timeframe: "30m",
		BarIndex:  meta.BarIndex,
		OpenTime:  meta.Timestamp,
		Features:  types.BarFeatures{},
	}
}

func (e *Engine) finalize() types.Bar {
	b := e.open
	b.Finalized = true
	b.FinalizedAt = time.Now().UTC()
	b.Features.CumulativeDelta = e.vwapAcc.cumulativeDelta

	if atr, ok := e.atr.value(); ok {
		b.Features.ATR = &atr
	}
	if b.Features.VVA != nil {
		prev := *b.Features.VVA
		e.prevVVA = &prev
	}
	b.Features.PrevVVA = e.prevVVA

	if tc, ok := e.trend.confirm(b.High, b.Low, b.Close, float64(b.Volume)); ok {
		b.Features.TrendConfirm = &tc
	}

	if px, ok := e.price.currentPrice(b.FinalizedAt); ok {
		b.Features.CurrentPrice = &px
	}
	if last, median, ok := e.price.spread(); ok {
		b.Features.Spread = &last
		b.Features.SpreadMedian60s = &median
	}

	clone := b.Clone()
	e.lastFinalized = &clone
	metrics.BarsFinalized.WithLabelValues(e.symbol).Inc()
	return clone
}

func (e *Engine) apply(rec types.Record) {
	b := e.open
	switch r := rec.(type) {
	case types.BaseBarRecord:
		if b.Volume == 0 {
			b.Open, b.High, b.Low, b.Close = r.Open, r.High, r.Low, r.Close
		} else {
			if r.High > b.High {
				b.High = r.High
			}
			if r.Low < b.Low {
				b.Low = r.Low
			}
			b.Close = r.Close
		}
		b.Volume += r.Volume
		e.atr.update(b.High, b.Low, b.Close)
		e.vwapAcc.addTrade(r.Close, float64(r.Volume))
		bands := e.vwapAcc.bands()
		b.Features.VWAP = &bands

	case types.TradeRecord:
		e.vwapAcc.addTrade(r.Price, r.Volume)
		bands := e.vwapAcc.bands()
		b.Features.VWAP = &bands
		e.price.onTrade(r.Price, r.M.Timestamp)

	case types.QuoteRecord:
		e.price.onQuote(r.Bid, r.Ask, r.M.Timestamp)

	case types.DepthLevelRecord:
		// Order-book depth is part of the closed Record set (spec.md §3) but
		// no decision-pipeline component consumes raw depth beyond the
		// top-of-book quote; nothing to fold here.

	case types.VWAPRecord:
		b.Features.VWAP = &types.VWAPBands{
			VWAP: r.VWAP, Up1: r.Up1, Dn1: r.Dn1, Up2: r.Up2, Dn2: r.Dn2, Up3: r.Up3, Dn3: r.Dn3,
		}

	case types.VVARecord:
		b.Features.VVA = &types.ValueArea{VPOC: r.VPOC, VAH: r.VAH, VAL: r.VAL}

	case types.NBCVRecord:
		nbcv := toNBCV(r)
		b.Features.NBCV = &nbcv
		e.vwapAcc.cumulativeDelta = r.CumulativeDelta

	case types.CumulativeDeltaRecord:
		e.vwapAcc.cumulativeDelta = r.Value

	case types.AtrBarRecord:
		e.atr.override(r.ATR)

	case types.VolumeProfileRecord:
		spot := b.Close
		if spot == 0 {
			spot = r.VPOC
		}
		vp := filterVolumeProfile(r, spot)
		b.Features.VolumeProfile = &vp
	}
}

// toNBCV derives the pressure classification from ask/bid percentages
// (spec.md §4.2/§6): pressure_bullish/pressure_bearish from upstream are
// trusted when present; otherwise derived from the percentage split.
func toNBCV(r types.NBCVRecord) types.NBCV {
	pressure := r.Pressure
	if pressure == 0 {
		switch {
		case r.AskPercent >= 0.60:
			pressure = 1
		case r.BidPercent >= 0.60:
			pressure = -1
		}
	}
	ratio := r.DeltaRatio
	if ratio == 0 && r.TotalVolume > 0 {
		ratio = r.Delta / r.TotalVolume
	}
	return types.NBCV{
		AskVolume: r.AskVolume, BidVolume: r.BidVolume,
		Delta: r.Delta, CumulativeDelta: r.CumulativeDelta,
		DeltaRatio: ratio,
		AskPercent: r.AskPercent, BidPercent: r.BidPercent,
		Pressure: pressure,
	}
}

// LastFinalized exposes the last finalized bar, implementing the
// `current_snapshot(symbol)` half of spec.md §4.2's contract (the rest of the
// Snapshot is composed by snapshot.Builder).
func (e *Engine) LastFinalized() (types.Bar, bool) {
	if e.lastFinalized == nil {
		return types.Bar{}, false
	}
	return *e.lastFinalized, true
}

// CurrentPrice returns the live current-price reading (mid of last quote,
// falling back to last trade) independent of bar finalization, for the
// SnapshotBuilder to read on every decision cycle (spec.md §3).
func (e *Engine) CurrentPrice(now time.Time) (float64, bool) {
	return e.price.currentPrice(now)
}

// Spread returns the live last/median-60s spread reading.
func (e *Engine) Spread() (last, median float64, ok bool) {
	return e.price.spread()
}
