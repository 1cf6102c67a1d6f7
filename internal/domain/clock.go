package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Clock provides the current time. Injectable so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique IDs for entries and transactions.
type IDGenerator interface {
	Generate() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type ulidGenerator struct{}

func (ulidGenerator) Generate() string { return ulid.Make().String() }
