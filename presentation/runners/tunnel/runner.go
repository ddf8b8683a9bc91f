package tunnel

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"sealtun/application/logging"
	"sealtun/application/network/tun"
	"sealtun/infrastructure/PAL/configuration"
	"sealtun/infrastructure/cryptography/keys"
	"sealtun/infrastructure/cryptography/stream"
	"sealtun/infrastructure/network/transport"
	"sealtun/infrastructure/settings"
	"sealtun/infrastructure/telemetry/trafficstats"
	"sealtun/infrastructure/tunnel/encrypted"
	"sealtun/infrastructure/tunnel/forwarding"
)

const (
	statsSampleInterval = time.Second
	statsEMAAlpha       = 0.3
)

type DeviceFactory interface {
	Open(ctx context.Context, s settings.Settings) (tun.Device, error)
}

type TransportFactory interface {
	Connect(ctx context.Context, s settings.Settings) (transport.Transport, error)
}

// Runner drives one tunnel session: device, keys, encrypted channel,
// transport and the forwarder between them.
type Runner struct {
	conf       configuration.Configuration
	devices    DeviceFactory
	transports TransportFactory
	logger     logging.Logger
	loadKey    func(path string) (*stream.Key, error)
}

func NewRunner(
	conf configuration.Configuration,
	devices DeviceFactory,
	transports TransportFactory,
	logger logging.Logger,
) *Runner {
	return &Runner{
		conf:       conf,
		devices:    devices,
		transports: transports,
		logger:     logger,
		loadKey:    keys.LoadFile,
	}
}

// Run returns nil when ctx ends the session and the error that stopped it
// otherwise. Everything it opened is closed before it returns.
func (r *Runner) Run(ctx context.Context) error {
	s := r.conf.Tunnel
	prefix, err := s.NoncePrefixBytes()
	if err != nil {
		return err
	}
	sendKey, recvKey, err := r.sessionKeys(s)
	if err != nil {
		return err
	}

	dev, err := r.devices.Open(ctx, s)
	if err != nil {
		sendKey.Zeroize()
		recvKey.Zeroize()
		return fmt.Errorf("failed to open tun device: %w", err)
	}
	enc, err := encrypted.FromDevice(dev, sendKey, recvKey, encrypted.Options{
		Encryption:  s.Encryption,
		NoncePrefix: prefix,
		Opener: stream.OpenerOptions{
			ProbeWindow: s.ResolvedProbeWindow(stream.DefaultProbeWindow),
			SkipAhead:   s.SkipAhead,
		},
		ValidateIP: s.ValidateIP,
	})
	if err != nil {
		_ = dev.Close()
		return fmt.Errorf("failed to build encrypted channel: %w", err)
	}
	defer func() {
		if closeErr := enc.Close(); closeErr != nil {
			r.logger.Printf("failed to close %s: %v", enc.Name(), closeErr)
		}
	}()
	r.warnNonceReuse(s, prefix)

	tr, err := r.transports.Connect(ctx, s)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect %s transport: %w", s.Protocol, err)
	}
	defer func() {
		if closeErr := tr.Close(); closeErr != nil {
			r.logger.Printf("failed to close %s transport: %v", s.Protocol, closeErr)
		}
	}()
	r.logger.Printf("tunnel %s up: %s %s, %s, reject policy %s", enc.Name(), s.Role, s.Protocol, s.Encryption, s.RejectPolicy)

	err = r.forward(ctx, enc, tr)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Runner) forward(ctx context.Context, enc *encrypted.Channel, tr transport.Transport) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stats := trafficstats.NewCollector(statsSampleInterval, statsEMAAlpha)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stats.Start(runCtx)
	}()
	if interval := r.conf.StatsInterval(); interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.Report(runCtx, interval, func(snap trafficstats.Snapshot) {
				r.logger.Printf("traffic: %s", snap)
			})
		}()
	}

	err := forwarding.New(enc, tr, forwarding.Options{
		RejectPolicy: r.conf.Tunnel.RejectPolicy,
		Logger:       r.logger,
		Stats:        stats,
	}).Run(runCtx)

	cancel()
	wg.Wait()
	seal, open := enc.Counters()
	r.logger.Printf("tunnel %s down: %s, counters seal %d open %d", enc.Name(), stats.Snapshot(), seal, open)
	return err
}

// sessionKeys returns the same key twice unless directional keys are enabled.
func (r *Runner) sessionKeys(s settings.Settings) (send, recv *stream.Key, err error) {
	master, err := r.loadKey(s.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load key: %w", err)
	}
	if !s.DirectionalKeys {
		return master, master, nil
	}
	defer master.Zeroize()
	send, recv, err = keys.Directional(master, s.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive directional keys: %w", err)
	}
	return send, recv, nil
}

func (r *Runner) warnNonceReuse(s settings.Settings, prefix []byte) {
	if s.DirectionalKeys {
		return
	}
	if len(prefix) == 0 || bytes.Count(prefix, []byte{0}) == len(prefix) {
		r.logger.Printf("warning: both directions seal under one key with the all-zero nonce prefix; enable DirectionalKeys")
		return
	}
	r.logger.Printf("warning: both directions seal under one key and nonce prefix; enable DirectionalKeys")
}
