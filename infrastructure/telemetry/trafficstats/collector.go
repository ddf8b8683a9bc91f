package trafficstats

import (
	"context"
	"sync/atomic"
	"time"
)

// Direction names one half of a tunnel. TX is the device-to-peer half,
// RX is the peer-to-device half.
type Direction int

const (
	TX Direction = iota
	RX
)

func (d Direction) String() string {
	switch d {
	case TX:
		return "tx"
	case RX:
		return "rx"
	default:
		return "unknown"
	}
}

type Snapshot struct {
	TXPackets    uint64
	RXPackets    uint64
	TXBytesTotal uint64
	RXBytesTotal uint64
	TXDropped    uint64
	RXDropped    uint64
	TXRate       uint64 // bytes/sec
	RXRate       uint64 // bytes/sec
}

type counters struct {
	packets atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
	rate    atomic.Uint64

	// sampler goroutine only
	last uint64
	ema  float64
}

// Collector counts forwarded and dropped packets per direction.
// A nil *Collector is valid and records nothing.
type Collector struct {
	dirs [2]counters

	sampleInterval time.Duration
	emaAlpha       float64
	started        atomic.Bool
}

func NewCollector(sampleInterval time.Duration, emaAlpha float64) *Collector {
	if sampleInterval <= 0 {
		sampleInterval = time.Second
	}
	if emaAlpha < 0 {
		emaAlpha = 0
	}
	if emaAlpha > 1 {
		emaAlpha = 1
	}
	return &Collector{
		sampleInterval: sampleInterval,
		emaAlpha:       emaAlpha,
	}
}

// Start samples byte rates until ctx is done. Only the first call runs.
func (c *Collector) Start(ctx context.Context) {
	if c == nil || !c.started.CompareAndSwap(false, true) {
		return
	}

	ticker := time.NewTicker(c.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.updateRates(c.sampleInterval)
		}
	}
}

// Report calls fn with a snapshot every interval until ctx is done.
func (c *Collector) Report(ctx context.Context, interval time.Duration, fn func(Snapshot)) {
	if c == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(c.Snapshot())
		}
	}
}

// RecordPacket is allocation-free and intended for hot paths.
func (c *Collector) RecordPacket(d Direction, bytes int) {
	if c == nil || !d.valid() {
		return
	}
	c.dirs[d].packets.Add(1)
	if bytes > 0 {
		c.dirs[d].bytes.Add(uint64(bytes))
	}
}

func (c *Collector) RecordDropped(d Direction) {
	if c == nil || !d.valid() {
		return
	}
	c.dirs[d].dropped.Add(1)
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	tx, rx := &c.dirs[TX], &c.dirs[RX]
	return Snapshot{
		TXPackets:    tx.packets.Load(),
		RXPackets:    rx.packets.Load(),
		TXBytesTotal: tx.bytes.Load(),
		RXBytesTotal: rx.bytes.Load(),
		TXDropped:    tx.dropped.Load(),
		RXDropped:    rx.dropped.Load(),
		TXRate:       tx.rate.Load(),
		RXRate:       rx.rate.Load(),
	}
}

func (c *Collector) updateRates(interval time.Duration) {
	seconds := interval.Seconds()
	if seconds <= 0 {
		return
	}
	for i := range c.dirs {
		d := &c.dirs[i]
		now := d.bytes.Load()
		perSec := float64(now-d.last) / seconds
		d.last = now

		if c.emaAlpha > 0 {
			if d.ema == 0 {
				d.ema = perSec
			} else {
				d.ema = c.emaAlpha*perSec + (1-c.emaAlpha)*d.ema
			}
			perSec = d.ema
		}
		d.rate.Store(uint64(perSec))
	}
}

func (d Direction) valid() bool {
	return d == TX || d == RX
}
