package chrono

import (
	"sync"
	"time"
)

// API is the interface that anything depending on the system clock should use.
//
// note: fault injection point
type API interface {
	Now() time.Time
}

// StandardImpl is the standard implementation of API using the standard library.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// ManualImpl is a clock that only moves when told to, it is used to test
// expiry without sleeping.
type ManualImpl struct {
	mutex sync.Mutex
	now   time.Time
}

func NewManualImpl(start time.Time) *ManualImpl {
	return &ManualImpl{now: start}
}

func (m *ManualImpl) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *ManualImpl) Advance(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.now = m.now.Add(d)
}
