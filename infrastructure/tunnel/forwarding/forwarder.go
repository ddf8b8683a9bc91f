package forwarding

import (
	"context"

	"sealtun/application/logging"
	"sealtun/application/network/channel"
	"sealtun/domain/network"
	"sealtun/infrastructure/settings"
	"sealtun/infrastructure/telemetry/trafficstats"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// RejectPolicy decides whether a rejected packet is dropped or ends the run.
	RejectPolicy settings.RejectPolicy
	// BufferSize is the per-loop packet buffer. Zero selects MaxFrameLength.
	BufferSize int
	Logger     logging.Logger
	// Stats counts A->B traffic as TX and B->A traffic as RX. May be nil.
	Stats *trafficstats.Collector
}

// Forwarder relays packets between two channels, one packet per read,
// in the order they were read.
type Forwarder struct {
	a, b channel.Channel
	opts Options
}

func New(a, b channel.Channel, opts Options) *Forwarder {
	if opts.BufferSize <= 0 {
		opts.BufferSize = settings.MaxFrameLength
	}
	return &Forwarder{a: a, b: b, opts: opts}
}

// Run forwards until one loop stops, then cancels the other and waits for it.
// The result is the *StopError of the loop that stopped first, or ctx.Err()
// if ctx was cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.pump(gctx, AToB, f.a, f.b)
	})
	g.Go(func() error {
		return f.pump(gctx, BToA, f.b, f.a)
	})
	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (f *Forwarder) pump(ctx context.Context, loop Loop, src, dst channel.Channel) error {
	dir := trafficstats.TX
	if loop == BToA {
		dir = trafficstats.RX
	}
	buf := make([]byte, f.opts.BufferSize)
	for {
		n, err := src.ReadPacket(ctx, buf)
		if err != nil {
			if f.dropped(loop, dir, OpRead, err) {
				continue
			}
			return &StopError{Loop: loop, Op: OpRead, Err: err}
		}
		if err := dst.WritePacket(ctx, buf[:n]); err != nil {
			if f.dropped(loop, dir, OpWrite, err) {
				continue
			}
			return &StopError{Loop: loop, Op: OpWrite, Err: err}
		}
		f.opts.Stats.RecordPacket(dir, n)
	}
}

// dropped applies the reject policy. It reports whether the loop may go on.
func (f *Forwarder) dropped(loop Loop, dir trafficstats.Direction, op Op, err error) bool {
	if !network.IsRejected(err) || f.opts.RejectPolicy != settings.DropRejected {
		return false
	}
	f.opts.Stats.RecordDropped(dir)
	if f.opts.Logger != nil {
		f.opts.Logger.Printf("forwarder: %s %s: dropped packet: %v", loop, op, err)
	}
	return true
}
