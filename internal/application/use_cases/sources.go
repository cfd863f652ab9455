package use_cases

import (
	"time"

	"github.com/google/uuid"
)

// Clock and IDGenerator are injected so receipts are reproducible in tests.
type Clock interface {
	NowUTC() time.Time
}

type IDGenerator interface {
	NewID() (string, error)
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) NowUTC() time.Time {
	return time.Now().UTC()
}

type uuidV7Generator struct{}

// NewUUIDv7Generator returns time-ordered ids so transfer receipts sort by
// creation without an extra column.
func NewUUIDv7Generator() IDGenerator {
	return uuidV7Generator{}
}

func (uuidV7Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
