//go:build linux

package netlink

import (
	"errors"
	"net/netip"
	"testing"

	"sealtun/application/network/tun"

	nl "github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

type fakeLink struct {
	calls  []string
	addrs  []string
	mtu    int
	failOn string
	err    error
}

func (f *fakeLink) fail(op string) error {
	f.calls = append(f.calls, op)
	if f.failOn == op {
		return f.err
	}
	return nil
}

func (f *fakeLink) LinkByName(name string) (nl.Link, error) {
	if err := f.fail("lookup"); err != nil {
		return nil, err
	}
	return &nl.Tuntap{LinkAttrs: nl.LinkAttrs{Name: name}}, nil
}

func (f *fakeLink) AddrAdd(_ nl.Link, addr *nl.Addr) error {
	f.addrs = append(f.addrs, addr.IPNet.String())
	return f.fail("addr")
}

func (f *fakeLink) LinkSetMTU(_ nl.Link, mtu int) error {
	f.mtu = mtu
	return f.fail("mtu")
}

func (f *fakeLink) LinkSetUp(nl.Link) error { return f.fail("up") }

func TestConfigure_Success(t *testing.T) {
	link := &fakeLink{}
	c := newConfigurator(link)
	err := c.Configure("seal0", tun.Configuration{
		Address: netip.MustParsePrefix("10.8.0.1/24"),
		MTU:     1400,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(link.addrs) != 1 || link.addrs[0] != "10.8.0.1/24" {
		t.Fatalf("unexpected addresses %v", link.addrs)
	}
	if link.mtu != 1400 {
		t.Fatalf("expected mtu 1400, got %d", link.mtu)
	}
	want := []string{"lookup", "addr", "mtu", "up"}
	if len(link.calls) != len(want) {
		t.Fatalf("unexpected call sequence %v", link.calls)
	}
	for i := range want {
		if link.calls[i] != want[i] {
			t.Fatalf("unexpected call sequence %v", link.calls)
		}
	}
}

func TestConfigure_SkipsUnsetFields(t *testing.T) {
	link := &fakeLink{}
	if err := newConfigurator(link).Configure("seal0", tun.Configuration{}); err != nil {
		t.Fatal(err)
	}
	if len(link.calls) != 2 || link.calls[1] != "up" {
		t.Fatalf("expected lookup and up only, got %v", link.calls)
	}
}

func TestConfigure_AtMostOnce(t *testing.T) {
	link := &fakeLink{failOn: "up", err: errors.New("transient")}
	c := newConfigurator(link)
	if err := c.Configure("seal0", tun.Configuration{}); err == nil {
		t.Fatal("expected first configuration to fail")
	}
	if err := c.Configure("seal0", tun.Configuration{}); !errors.Is(err, ErrAlreadyConfigured) {
		t.Fatalf("expected ErrAlreadyConfigured, got %v", err)
	}
	if err := c.Configure("seal1", tun.Configuration{}); errors.Is(err, ErrAlreadyConfigured) {
		t.Fatal("other devices must stay configurable")
	}
}

func TestConfigure_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		err    error
		want   error
	}{
		{name: "permission", failOn: "addr", err: unix.EPERM, want: tun.ErrPermissionDenied},
		{name: "access", failOn: "up", err: unix.EACCES, want: tun.ErrPermissionDenied},
		{name: "missing link", failOn: "lookup", err: errors.New("Link not found"), want: tun.ErrDeviceUnavailable},
		{name: "mtu", failOn: "mtu", err: unix.EINVAL, want: tun.ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{failOn: tt.failOn, err: tt.err}
			err := newConfigurator(link).Configure("seal0", tun.Configuration{
				Address: netip.MustParsePrefix("fd00::1/64"),
				MTU:     1280,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
