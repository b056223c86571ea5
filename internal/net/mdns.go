package net

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_syncboard._tcp"

var ErrNoBoardFound = errors.New("no board advertised on the local network")

// Advertise announces a board server on port over mDNS. Close the returned
// server to withdraw the announcement.
func Advertise(port int, ips []net.IP) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, ips, []string{"SyncBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses the LAN for an advertised board and returns the websocket
// URL of the first one that answers within timeout.
func Discover(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() { errc <- mdns.Query(params) }()
	for {
		select {
		case e := <-entries:
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			return ShareLink(e.AddrV4, e.Port), nil
		case err := <-errc:
			if err != nil {
				return "", fmt.Errorf("mdns query: %w", err)
			}
			return "", ErrNoBoardFound
		}
	}
}
