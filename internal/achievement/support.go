package achievement

import (
	"os"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time.Now so tests can pin award timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock implementation backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// IDGenerator abstracts id creation for earned records.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator that produces v7 UUIDs where available, falling back to v4.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// appLocation is the timezone schedule windows evaluate in. Configurable via
// APP_TIMEZONE; falls back to UTC when unset or unloadable.
var appLocation = loadAppLocation()

func loadAppLocation() *time.Location {
	name := os.Getenv("APP_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AppLocation returns the location used for local-time bucketing.
func AppLocation() *time.Location {
	return appLocation
}
