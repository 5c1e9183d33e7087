package cluster_client

import (
	"sort"
	"time"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
)

const (
	// Seeds are re-added after this many consecutive failed polls.
	seedFallbackAfter = 3
	maxBackoffShift   = 6
	maxTargetBackoff  = time.Minute
)

type targetState struct {
	failures int
	retryAt  time.Time
}

// pollTargets returns the addresses to ask this round: live ring members,
// plus the seeds when the ring is empty, the seed interval elapsed, or polls
// keep failing. Targets in backoff are skipped unless nothing else is left.
func (c *ClusterClient) pollTargets(now time.Time) []string {
	set := make(map[string]struct{})
	for _, n := range c.ring.GetNodes() {
		if n.Addr != "" && n.Status != shard.NodeStatusLeft {
			set[n.Addr] = struct{}{}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(set) == 0 || now.Sub(c.lastSeedPoll) >= seedInterval || c.failedPolls >= seedFallbackAfter {
		for _, s := range c.seeds {
			set[s] = struct{}{}
		}
		c.lastSeedPoll = now
	}

	targets := make([]string, 0, len(set))
	for addr := range set {
		if st, ok := c.targets[addr]; ok && now.Before(st.retryAt) {
			continue
		}
		targets = append(targets, addr)
	}
	if len(targets) == 0 {
		targets = append(targets, c.seeds...)
	}
	sort.Strings(targets)
	return targets
}

func (c *ClusterClient) targetFailed(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.targets[addr]
	if !ok {
		st = &targetState{}
		c.targets[addr] = st
	}
	st.failures++
	st.retryAt = time.Now().Add(c.backoff(st.failures))
	c.dropClientLocked(addr)
}

func (c *ClusterClient) targetSucceeded(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, addr)
}

// backoff doubles per failure, capped at maxTargetBackoff.
func (c *ClusterClient) backoff(failures int) time.Duration {
	if failures > maxBackoffShift {
		failures = maxBackoffShift
	}
	return min(c.pollInterval<<failures, maxTargetBackoff)
}

func (c *ClusterClient) pollSucceeded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedPolls = 0
}

func (c *ClusterClient) pollFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedPolls++
}
