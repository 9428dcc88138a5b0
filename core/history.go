package workflow

import (
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// TurnOutcome classifies how a recorded turn ended.
type TurnOutcome string

const (
	TurnOutcomeCompleted TurnOutcome = "completed"
	TurnOutcomeCancelled TurnOutcome = "cancelled"
	TurnOutcomeFailed    TurnOutcome = "failed"
)

// TurnRecord is an immutable record of one finished turn.
type TurnRecord struct {
	ID         string
	Transcript string
	Response   string
	Outcome    TurnOutcome
	// ErrorKind is set only for failed turns.
	ErrorKind ErrorKind
	StartedAt time.Time
	EndedAt   time.Time
}

type turnLog struct {
	mu      sync.RWMutex
	records []TurnRecord
}

func (l *turnLog) append(record TurnRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
}

// snapshot returns a deep copy so callers can hold onto it without racing
// later appends.
func (l *turnLog) snapshot() []TurnRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]TurnRecord, 0, len(l.records))
	if err := copier.Copy(&records, &l.records); err != nil {
		return nil
	}
	return records
}
