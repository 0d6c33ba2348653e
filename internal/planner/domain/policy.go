package domain

import (
	"fmt"
	"time"
)

// Default break policy values.
const (
	DefaultMinBreak            = 10 * time.Minute
	DefaultMaxBreak            = 20 * time.Minute
	DefaultBreakEvery          = 90 * time.Minute
	DefaultMaxConsecutiveStudy = 90 * time.Minute

	// DefaultBreakGrowthDivisor sizes breaks proportionally to the study
	// time they follow: a 60-minute run earns a 10-minute break, a
	// 90-minute run a 15-minute one.
	DefaultBreakGrowthDivisor = 6
)

// BreakPolicy governs when breaks are inserted and how long they last.
type BreakPolicy struct {
	// MinBreak is the shortest break ever inserted.
	MinBreak time.Duration

	// MaxBreak caps break length regardless of preceding study time.
	MaxBreak time.Duration

	// BreakEvery is the target study cadence: a break is inserted before
	// the next study block once accumulated study time would reach it.
	BreakEvery time.Duration

	// MaxConsecutiveStudy is the hard ceiling on uninterrupted study time.
	MaxConsecutiveStudy time.Duration

	// BreakGrowthDivisor sizes breaks as consecutive study time divided
	// by this value, clamped to [MinBreak, MaxBreak].
	BreakGrowthDivisor int
}

// DefaultBreakPolicy returns the standard break policy.
func DefaultBreakPolicy() BreakPolicy {
	return BreakPolicy{
		MinBreak:            DefaultMinBreak,
		MaxBreak:            DefaultMaxBreak,
		BreakEvery:          DefaultBreakEvery,
		MaxConsecutiveStudy: DefaultMaxConsecutiveStudy,
		BreakGrowthDivisor:  DefaultBreakGrowthDivisor,
	}
}

// Validate checks the policy for internal consistency.
func (p BreakPolicy) Validate() error {
	if p.MinBreak <= 0 {
		return fmt.Errorf("%w: min break must be positive", ErrInvalidInput)
	}
	if p.MaxBreak < p.MinBreak {
		return fmt.Errorf("%w: max break shorter than min break", ErrInvalidInput)
	}
	if p.BreakEvery <= 0 {
		return fmt.Errorf("%w: break cadence must be positive", ErrInvalidInput)
	}
	if p.MaxConsecutiveStudy < p.BreakEvery {
		return fmt.Errorf("%w: max consecutive study shorter than break cadence", ErrInvalidInput)
	}
	if p.BreakGrowthDivisor <= 0 {
		return fmt.Errorf("%w: break growth divisor must be positive", ErrInvalidInput)
	}
	return nil
}

// BreakLength sizes the break following the given run of consecutive study
// time, rounded to whole minutes.
func (p BreakPolicy) BreakLength(consecutive time.Duration) time.Duration {
	length := (consecutive / time.Duration(p.BreakGrowthDivisor)).Round(time.Minute)
	if length < p.MinBreak {
		return p.MinBreak
	}
	if length > p.MaxBreak {
		return p.MaxBreak
	}
	return length
}

// Default score policy values. The wellness score is a weighted blend of
// break-to-study balance and study block sizing, with a bonus when harder
// subjects land earlier and a penalty if a consecutive-study overrun slips
// through.
const (
	DefaultIdealBreakRatio = 0.15
	DefaultBalanceWeight   = 0.4
	DefaultDurationWeight  = 0.6
	DefaultOrderingBonus   = 0.5
	DefaultOverrunPenalty  = 2.0
)

// ScorePolicy holds the wellness score weights. All weights are explicit
// configuration so two runs over the same schedule always agree.
type ScorePolicy struct {
	// IdealBreakRatio is the target break-to-study time ratio.
	IdealBreakRatio float64

	// BalanceWeight scales the break-balance component.
	BalanceWeight float64

	// DurationWeight scales the block-sizing component.
	DurationWeight float64

	// OrderingBonus is added when study blocks run hardest-first.
	OrderingBonus float64

	// OverrunPenalty is subtracted when any uninterrupted study run
	// exceeds the break policy's ceiling.
	OverrunPenalty float64
}

// DefaultScorePolicy returns the standard wellness score weights.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		IdealBreakRatio: DefaultIdealBreakRatio,
		BalanceWeight:   DefaultBalanceWeight,
		DurationWeight:  DefaultDurationWeight,
		OrderingBonus:   DefaultOrderingBonus,
		OverrunPenalty:  DefaultOverrunPenalty,
	}
}

// Validate checks the score policy for internal consistency.
func (p ScorePolicy) Validate() error {
	if p.IdealBreakRatio <= 0 {
		return fmt.Errorf("%w: ideal break ratio must be positive", ErrInvalidInput)
	}
	if p.BalanceWeight < 0 || p.DurationWeight < 0 {
		return fmt.Errorf("%w: score weights must be non-negative", ErrInvalidInput)
	}
	return nil
}
