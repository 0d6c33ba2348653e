package domain

import "time"

// BlockKind distinguishes study blocks from break blocks.
type BlockKind string

const (
	BlockKindStudy BlockKind = "study"
	BlockKindBreak BlockKind = "break"
)

// Block is one slot in a generated schedule: a study session for a subject,
// or a recovery break with a suggested activity.
type Block struct {
	kind       BlockKind
	interval   Interval
	subject    string
	difficulty Difficulty
	activity   string
}

// NewStudyBlock creates a study block for a subject.
func NewStudyBlock(subject string, difficulty Difficulty, interval Interval) Block {
	return Block{
		kind:       BlockKindStudy,
		interval:   interval,
		subject:    subject,
		difficulty: difficulty,
	}
}

// NewBreakBlock creates a break block with an activity suggestion derived
// from its length.
func NewBreakBlock(interval Interval) Block {
	return Block{
		kind:     BlockKindBreak,
		interval: interval,
		activity: BreakActivity(interval.Duration()),
	}
}

// RehydrateBlock recreates a block from persisted state.
func RehydrateBlock(kind BlockKind, subject string, difficulty Difficulty, interval Interval) Block {
	if kind == BlockKindBreak {
		return NewBreakBlock(interval)
	}
	return NewStudyBlock(subject, difficulty, interval)
}

func (b Block) Kind() BlockKind         { return b.kind }
func (b Block) Interval() Interval      { return b.interval }
func (b Block) Start() time.Time        { return b.interval.Start() }
func (b Block) End() time.Time          { return b.interval.End() }
func (b Block) Duration() time.Duration { return b.interval.Duration() }
func (b Block) Subject() string         { return b.subject }
func (b Block) Difficulty() Difficulty  { return b.difficulty }
func (b Block) Activity() string        { return b.activity }

func (b Block) IsStudy() bool { return b.kind == BlockKindStudy }
func (b Block) IsBreak() bool { return b.kind == BlockKindBreak }

// BreakActivity suggests a recovery activity appropriate for a break of the
// given length.
func BreakActivity(d time.Duration) string {
	switch {
	case d <= 10*time.Minute:
		return "Deep breathing or stretching"
	case d <= 20*time.Minute:
		return "Short walk or hydration"
	default:
		return "Physical exercise or snack"
	}
}
