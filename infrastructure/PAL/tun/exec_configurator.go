package tun

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	application "sealtun/application/network/tun"
	"sealtun/infrastructure/PAL/exec_commander"
)

type command struct {
	name string
	args []string
}

// ExecConfigurator configures a device by running the platform's network
// tools. Each device name is configured at most once.
type ExecConfigurator struct {
	commander exec_commander.Commander
	build     func(name string, conf application.Configuration) []command

	mu         sync.Mutex
	configured map[string]struct{}
}

func NewExecConfigurator(commander exec_commander.Commander, goos string) (*ExecConfigurator, error) {
	var build func(string, application.Configuration) []command
	switch goos {
	case "darwin", "freebsd", "openbsd", "netbsd":
		build = ifconfigCommands
	case "windows":
		build = netshCommands
	default:
		return nil, fmt.Errorf("%w: no configurator for %s", application.ErrDeviceUnavailable, goos)
	}
	return &ExecConfigurator{
		commander:  commander,
		build:      build,
		configured: map[string]struct{}{},
	}, nil
}

func (c *ExecConfigurator) Configure(name string, conf application.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.configured[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyConfigured)
	}
	c.configured[name] = struct{}{}

	for _, cmd := range c.build(name, conf) {
		if err := c.commander.Run(context.Background(), cmd.name, cmd.args...); err != nil {
			return fmt.Errorf("%w: %v", application.ErrDeviceUnavailable, err)
		}
	}
	return nil
}

// ifconfigCommands treats the device as point-to-point, as utun requires a
// destination for IPv4 addresses.
func ifconfigCommands(name string, conf application.Configuration) []command {
	var cmds []command
	if conf.Address.IsValid() {
		addr := conf.Address.Addr()
		if addr.Is4() {
			mask := net.IP(net.CIDRMask(conf.Address.Bits(), 32)).String()
			cmds = append(cmds, command{"ifconfig", []string{name, "inet", addr.String(), addr.String(), "netmask", mask}})
		} else {
			cmds = append(cmds, command{"ifconfig", []string{name, "inet6", addr.String(), "prefixlen", strconv.Itoa(conf.Address.Bits())}})
		}
	}
	if conf.MTU > 0 {
		cmds = append(cmds, command{"ifconfig", []string{name, "mtu", strconv.Itoa(conf.MTU)}})
	}
	return append(cmds, command{"ifconfig", []string{name, "up"}})
}

// netshCommands relies on wintun adapters coming up on their own.
func netshCommands(name string, conf application.Configuration) []command {
	var cmds []command
	family := "ipv4"
	if conf.Address.IsValid() {
		addr := conf.Address.Addr()
		if addr.Is4() {
			mask := net.IP(net.CIDRMask(conf.Address.Bits(), 32)).String()
			cmds = append(cmds, command{"netsh", []string{"interface", "ipv4", "set", "address", "name=" + name, "static", addr.String(), mask}})
		} else {
			family = "ipv6"
			cmds = append(cmds, command{"netsh", []string{"interface", "ipv6", "add", "address", "interface=" + name, addr.String() + "/" + strconv.Itoa(conf.Address.Bits())}})
		}
	}
	if conf.MTU > 0 {
		cmds = append(cmds, command{"netsh", []string{"interface", family, "set", "subinterface", name, "mtu=" + strconv.Itoa(conf.MTU), "store=active"}})
	}
	return cmds
}
