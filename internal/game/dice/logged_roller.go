package dice

import "go.uber.org/zap"

var (
	critExpr     = MustParse("1d24")
	percentExpr  = MustParse("1d100")
	coinExpr     = MustParse("1d2")
	damageSpread = MustParse(RangeExpr(85, 100))
)

// Roller wraps a Source and logger to provide logged dice rolling.
// Every roll is logged at debug level with expression, dice values, modifier,
// and total, so a battle can be audited roll by roll.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) (RollResult, error) {
	result, err := Roll(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// RollExpr parses expr and rolls it, logging the result.
//
// Precondition: expr must be a valid dice expression string.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e)
}

func (r *Roller) mustTotal(expr Expression) int {
	res, _ := r.Roll(expr)
	return res.Total()
}

// Percent returns a uniform value in [1, 100].
func (r *Roller) Percent() int { return r.mustTotal(percentExpr) }

// DamageSpread returns the random damage factor in [85, 100].
func (r *Roller) DamageSpread() int { return r.mustTotal(damageSpread) }

// Critical reports whether a 1-in-24 critical hit roll succeeded.
func (r *Roller) Critical() bool { return r.mustTotal(critExpr) == 1 }

// CoinFlip returns true on heads with probability 1/2.
func (r *Roller) CoinFlip() bool { return r.mustTotal(coinExpr) == 1 }

// Chance reports whether a percent-chance check of pct succeeded.
// pct >= 100 always succeeds without consuming a roll; pct <= 0 never does.
func (r *Roller) Chance(pct int) bool {
	if pct >= 100 {
		return true
	}
	if pct <= 0 {
		return false
	}
	return r.Percent() <= pct
}

// Between returns a uniform value in [lo, hi].
//
// hi <= lo returns lo without rolling.
func (r *Roller) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return r.mustTotal(MustParse(RangeExpr(lo, hi)))
}
