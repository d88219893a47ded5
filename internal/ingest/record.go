// Package ingest implements the ChartTail/Unifier layer from spec.md §4.1:
// tailing per-chart append-only JSON-lines files, parsing them into the
// closed Record variant set, deduplicating, and merging N chart streams into
// one totally ordered UnifiedEvent stream.
package ingest

import (
	"time"

	json "github.com/segmentio/encoding/json"

	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/xerrors"
)

// envelope mirrors every field any record line variant can carry
// (spec.md §6). Using one flat struct keeps parsing to a single Unmarshal
// per line; fields irrelevant to a given "type" are simply left zero.
type envelope struct {
	T     float64 `json:"t"`
	Sym   string  `json:"sym"`
	Type  string  `json:"type"`
	Chart int     `json:"chart"`
	I     int64   `json:"i"`

	O *float64 `json:"o"`
	H *float64 `json:"h"`
	L *float64 `json:"l"`
	C *float64 `json:"c"`
	V *int64   `json:"v"`

	VWAP *float64 `json:"vwap"`
	Up1  *float64 `json:"up1"`
	Dn1  *float64 `json:"dn1"`
	Up2  *float64 `json:"up2"`
	Dn2  *float64 `json:"dn2"`
	Up3  *float64 `json:"up3"`
	Dn3  *float64 `json:"dn3"`

	VPOC *float64  `json:"vpoc"`
	VAH  *float64  `json:"vah"`
	VAL  *float64  `json:"val"`
	HVN  []float64 `json:"hvn"`
	LVN  []float64 `json:"lvn"`

	AskVolume       *float64 `json:"ask_volume"`
	BidVolume       *float64 `json:"bid_volume"`
	Delta           *float64 `json:"delta"`
	Trades          *int64   `json:"trades"`
	CumulativeDelta *float64 `json:"cumulative_delta"`
	TotalVolume     *float64 `json:"total_volume"`
	DeltaRatio      *float64 `json:"delta_ratio"`
	AskPercent      *float64 `json:"ask_percent"`
	BidPercent      *float64 `json:"bid_percent"`
	PressureBullish *int     `json:"pressure_bullish"`
	PressureBearish *int     `json:"pressure_bearish"`
	Pressure        *int     `json:"pressure"`

	Px  *float64 `json:"px"`
	Vol *float64 `json:"vol"`
	Seq *int64   `json:"seq"`

	Bid *float64 `json:"bid"`
	Ask *float64 `json:"ask"`
	Bq  *float64 `json:"bq"`
	Aq  *float64 `json:"aq"`

	Gamma      map[string]float64 `json:"gamma"`
	BlindSpots map[string]float64 `json:"blind_spots"`
	Swing      map[string]float64 `json:"swing"`

	Last *float64 `json:"last"`
	Corr *float64 `json:"corr"`
	ATR  *float64 `json:"atr"`

	Level    *int     `json:"level"`
	BidPrice *float64 `json:"bid_price"`
	BidQty   *float64 `json:"bid_qty"`
	AskPrice *float64 `json:"ask_price"`
	AskQty   *float64 `json:"ask_qty"`
}

func f64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func i64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func ival(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// variantByTag maps the wire "type" string to its VariantKind, built once
// from VariantKind.String() so the two never drift apart.
var variantByTag = func() map[string]types.VariantKind {
	m := make(map[string]types.VariantKind, 14)
	for k := types.VariantBaseBar; k <= types.VariantVixPoint; k++ {
		m[k.String()] = k
	}
	return m
}()

// ParseLine decodes one JSON-lines record (spec.md §6) into a concrete
// Record. An unknown "type" value is reported as a *xerrors.Error of
// KindParse per spec.md's "Unknown type values MUST be ignored with a
// counter increment" rule; the caller is expected to count it and move on.
func ParseLine(line []byte) (types.Record, error) {
	var e envelope
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, xerrors.Parse("ingest.ParseLine", err)
	}

	kind, ok := variantByTag[e.Type]
	if !ok {
		return nil, xerrors.Parse("ingest.ParseLine", errUnknownVariant(e.Type))
	}

	meta := types.RecordMeta{
		Symbol:    e.Sym,
		ChartID:   e.Chart,
		Timestamp: time.Unix(0, int64(e.T*float64(time.Second))).UTC(),
		BarIndex:  e.I,
		Variant:   kind,
	}

	switch kind {
	case types.VariantBaseBar:
		return types.BaseBarRecord{M: meta, Open: f64(e.O), High: f64(e.H), Low: f64(e.L), Close: f64(e.C), Volume: i64(e.V)}, nil
	case types.VariantQuote:
		return types.QuoteRecord{M: meta, Bid: f64(e.Bid), Ask: f64(e.Ask), BidQty: f64(e.Bq), AskQty: f64(e.Aq), Seq: i64(e.Seq)}, nil
	case types.VariantTrade:
		return types.TradeRecord{M: meta, Price: f64(e.Px), Volume: f64(e.Vol), Seq: i64(e.Seq)}, nil
	case types.VariantDepthLevel:
		return types.DepthLevelRecord{
			M: meta, Level: ival(e.Level),
			BidPrice: f64(e.BidPrice), BidQty: f64(e.BidQty),
			AskPrice: f64(e.AskPrice), AskQty: f64(e.AskQty),
		}, nil
	case types.VariantVWAP:
		return types.VWAPRecord{
			M: meta, VWAP: f64(e.VWAP),
			Up1: f64(e.Up1), Dn1: f64(e.Dn1),
			Up2: f64(e.Up2), Dn2: f64(e.Dn2),
			Up3: f64(e.Up3), Dn3: f64(e.Dn3),
		}, nil
	case types.VariantVVA:
		return types.VVARecord{M: meta, VPOC: f64(e.VPOC), VAH: f64(e.VAH), VAL: f64(e.VAL)}, nil
	case types.VariantPVWAP:
		return types.PVWAPRecord{M: meta, VWAP: f64(e.VWAP)}, nil
	case types.VariantNBCV:
		return types.NBCVRecord{
			M: meta,
			AskVolume: f64(e.AskVolume), BidVolume: f64(e.BidVolume),
			Delta: f64(e.Delta), CumulativeDelta: f64(e.CumulativeDelta),
			Trades: i64(e.Trades), TotalVolume: f64(e.TotalVolume),
			DeltaRatio: f64(e.DeltaRatio),
			AskPercent: f64(e.AskPercent), BidPercent: f64(e.BidPercent),
			PressureBullish: ival(e.PressureBullish) != 0,
			PressureBearish: ival(e.PressureBearish) != 0,
			Pressure:        ival(e.Pressure),
		}, nil
	case types.VariantCumulativeDelta:
		return types.CumulativeDeltaRecord{M: meta, Value: f64(e.CumulativeDelta)}, nil
	case types.VariantAtrBar:
		return types.AtrBarRecord{M: meta, ATR: f64(e.ATR)}, nil
	case types.VariantVolumeProfile:
		return types.VolumeProfileRecord{M: meta, VPOC: f64(e.VPOC), VAH: f64(e.VAH), VAL: f64(e.VAL), HVN: e.HVN, LVN: e.LVN}, nil
	case types.VariantCorrelation:
		return types.CorrelationRecord{M: meta, Value: f64(e.Corr)}, nil
	case types.VariantMenthorQLevels:
		return types.MenthorQLevelsRecord{M: meta, Gamma: e.Gamma, BlindSpots: e.BlindSpots, Swing: e.Swing}, nil
	case types.VariantVixPoint:
		return types.VixPointRecord{M: meta, Close: f64(e.Last)}, nil
	}
	return nil, xerrors.Parse("ingest.ParseLine", errUnknownVariant(e.Type))
}

type unknownVariantError string

func (e unknownVariantError) Error() string { return "unknown record variant: " + string(e) }

func errUnknownVariant(tag string) error { return unknownVariantError(tag) }
