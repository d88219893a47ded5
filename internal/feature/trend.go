package feature

import (
	"github.com/evdnx/goti"

	"github.com/menthorq/tradecore/internal/types"
)

// trendConfirmer wires a goti.IndicatorSuite into the FeatureEngine the same
// way the teacher's TrendComposite does: build the suite once from the
// default config, feed it one bar at a time via Add, then read the
// HMA/AMDO/ATSO crossovers to fold into a single directional score, stored
// on each Bar as Features.TrendConfirm. No analyzer or the fuser's
// structure score reads it.
type trendConfirmer struct {
	suite *goti.IndicatorSuite
}

func newTrendConfirmer() (*trendConfirmer, error) {
	cfg := goti.DefaultConfig()
	suite, err := goti.NewIndicatorSuiteWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &trendConfirmer{suite: suite}, nil
}

// confirm feeds one bar into the suite and derives a TrendConfirm. It
// returns false while the suite is still warming up (insufficient history
// for one of the underlying indicators).
func (t *trendConfirmer) confirm(high, low, close, volume float64) (types.TrendConfirm, bool) {
	if err := t.suite.Add(high, low, close, volume); err != nil {
		return types.TrendConfirm{}, false
	}

	hmaBull, errHB := t.suite.GetHMA().IsBullishCrossover()
	hmaBear, errHR := t.suite.GetHMA().IsBearishCrossover()
	if errHB != nil || errHR != nil {
		return types.TrendConfirm{}, false
	}

	amdoBull, errAB := t.suite.GetAMDO().IsBullishCrossover()
	amdoBear, errAR := t.suite.GetAMDO().IsBearishCrossover()
	if errAB != nil || errAR != nil {
		return types.TrendConfirm{}, false
	}

	atsoBull := t.suite.GetATSO().IsBullishCrossover()

	tc := types.TrendConfirm{
		HMABullish: hmaBull, HMABearish: hmaBear,
		AMDOBullish: amdoBull, AMDOBearish: amdoBear,
		ATSOBullish: atsoBull,
	}

	var score float64
	vote := func(bull, bear bool, weight float64) {
		switch {
		case bull:
			score += weight
		case bear:
			score -= weight
		}
	}
	vote(tc.HMABullish, tc.HMABearish, 0.4)
	vote(tc.AMDOBullish, tc.AMDOBearish, 0.4)
	if tc.ATSOBullish {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	tc.Score = score
	return tc, true
}
