package steam

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// AlignedClock tracks the offset between the local clock and Steam's
// authoritative one, queried from ITwoFactorService/QueryTime. Device
// clocks are assumed untrustworthy: every time-dependent value sent to
// Steam (one-time codes, confirmation signatures, timestamp fields)
// must be derived from this clock.
type AlignedClock struct {
	client *mobileClient

	mu      sync.Mutex
	aligned bool
	offset  time.Duration
}

func newAlignedClock(client *mobileClient) *AlignedClock {
	return &AlignedClock{client: client}
}

// Align measures the offset once and caches it. Subsequent calls are
// no-ops; the offset stays fixed for the clock's lifetime.
func (c *AlignedClock) Align(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aligned {
		return nil
	}

	before := time.Now()

	var response struct {
		Inner struct {
			ServerTime int64 `json:"server_time,string"`
		} `json:"response"`
	}
	err := c.client.postFormJSON(ctx, queryTimeURL, url.Values{"steamid": {"0"}}, &response)
	if err != nil {
		return err
	}

	c.offset = time.Unix(response.Inner.ServerTime, 0).Sub(before)
	c.aligned = true
	return nil
}

// Now returns the current unix time as Steam sees it. Zero offset is
// used when the clock was never aligned.
func (c *AlignedClock) Now() int64 {
	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()
	return time.Now().Add(offset).Unix()
}

// Offset returns the measured skew in whole seconds.
func (c *AlignedClock) Offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(c.offset / time.Second)
}
