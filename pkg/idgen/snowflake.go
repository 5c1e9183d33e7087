// Package idgen allocates identifiers: opaque random file ids and
// time-ordered 64-bit sequence numbers.
package idgen

import (
	"errors"
	"fmt"
	"sync"
)

// Sequence layout (63 usable bits):
//
//	41 bits  milliseconds since Epoch
//	10 bits  node id
//	12 bits  per-millisecond counter
const (
	nodeBits     = 10
	sequenceBits = 12

	maxNodeID   = -1 ^ (-1 << nodeBits)
	maxSequence = -1 ^ (-1 << sequenceBits)

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits

	// Epoch is 2025-01-01 00:00:00 UTC in milliseconds.
	Epoch = 1735689600000

	// maxDriftMS is how far the clock may step back before Next fails.
	// RedisClock falls back to the local clock, so small steps happen.
	maxDriftMS = 50
)

var (
	ErrNodeIDTooLarge = errors.New("node ID too large")
	ErrClockMovedBack = errors.New("clock moved backwards")
)

// Snowflake hands out strictly increasing sequence numbers for one node.
// Registry rows use them to break ties between equal creation timestamps.
type Snowflake struct {
	mu       sync.Mutex
	clock    Clock
	nodeID   int64
	lastTime int64
	sequence int64
}

// New creates a generator for nodeID. A nil clock uses the system clock.
func New(nodeID int64, clock Clock) (*Snowflake, error) {
	if nodeID < 0 || nodeID > int64(maxNodeID) {
		return nil, ErrNodeIDTooLarge
	}
	if clock == nil {
		clock = &SystemClock{}
	}
	return &Snowflake{
		clock:    clock,
		nodeID:   nodeID,
		lastTime: -1,
	}, nil
}

// Next returns the next sequence number.
func (s *Snowflake) Next() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now < s.lastTime {
		if s.lastTime-now > maxDriftMS {
			return 0, fmt.Errorf("%w by %dms", ErrClockMovedBack, s.lastTime-now)
		}
		// Keep counting on the last timestamp until the clock catches up.
		now = s.lastTime
	}

	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & int64(maxSequence)
		if s.sequence == 0 {
			// Counter exhausted; borrow the next millisecond.
			now = s.lastTime + 1
		}
	} else {
		s.sequence = 0
	}
	s.lastTime = now

	return ((now - Epoch) << timestampShift) | (s.nodeID << nodeShift) | s.sequence, nil
}
