//go:build linux

package netlink

import (
	"errors"
	"fmt"
	"sync"

	"sealtun/application/network/tun"

	nl "github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// ErrAlreadyConfigured is returned when a device is configured a second time.
var ErrAlreadyConfigured = errors.New("device already configured")

// Link is the subset of the netlink API the configurator needs.
type Link interface {
	LinkByName(name string) (nl.Link, error)
	AddrAdd(link nl.Link, addr *nl.Addr) error
	LinkSetMTU(link nl.Link, mtu int) error
	LinkSetUp(link nl.Link) error
}

type kernelLink struct{}

func (kernelLink) LinkByName(name string) (nl.Link, error)   { return nl.LinkByName(name) }
func (kernelLink) AddrAdd(link nl.Link, addr *nl.Addr) error { return nl.AddrAdd(link, addr) }
func (kernelLink) LinkSetMTU(link nl.Link, mtu int) error    { return nl.LinkSetMTU(link, mtu) }
func (kernelLink) LinkSetUp(link nl.Link) error              { return nl.LinkSetUp(link) }

// Configurator assigns the address, sets the MTU and brings the link up
// over rtnetlink. Each device name is configured at most once.
type Configurator struct {
	link Link

	mu         sync.Mutex
	configured map[string]struct{}
}

func NewConfigurator() *Configurator {
	return newConfigurator(kernelLink{})
}

func newConfigurator(link Link) *Configurator {
	return &Configurator{link: link, configured: map[string]struct{}{}}
}

func (c *Configurator) Configure(name string, conf tun.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.configured[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyConfigured)
	}
	c.configured[name] = struct{}{}

	link, err := c.link.LinkByName(name)
	if err != nil {
		return mapErr("lookup link", name, err)
	}
	if conf.Address.IsValid() {
		addr, err := nl.ParseAddr(conf.Address.String())
		if err != nil {
			return fmt.Errorf("%w: %s: parse address %s: %v", tun.ErrDeviceUnavailable, name, conf.Address, err)
		}
		if err := c.link.AddrAdd(link, addr); err != nil {
			return mapErr("add address "+conf.Address.String(), name, err)
		}
	}
	if conf.MTU > 0 {
		if err := c.link.LinkSetMTU(link, conf.MTU); err != nil {
			return mapErr(fmt.Sprintf("set mtu %d", conf.MTU), name, err)
		}
	}
	if err := c.link.LinkSetUp(link); err != nil {
		return mapErr("set link up", name, err)
	}
	return nil
}

func mapErr(op, name string, err error) error {
	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
		return fmt.Errorf("%w: %s: %s: %v", tun.ErrPermissionDenied, name, op, err)
	}
	return fmt.Errorf("%w: %s: %s: %v", tun.ErrDeviceUnavailable, name, op, err)
}
