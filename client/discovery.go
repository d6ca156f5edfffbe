package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	discoveryService = "_nexuscafe._tcp"
	discoveryDomain  = "local."
)

var errNoServer = errors.New("no NexusCafe server found on the local network")

// discoverServer browses mDNS for the first advertised NexusCafe server and
// returns its gRPC address.
func discoverServer(ctx context.Context, timeout time.Duration) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to start mdns resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, discoveryService, discoveryDomain, entries); err != nil {
		return "", fmt.Errorf("failed to browse %s: %w", discoveryService, err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", errNoServer
		case entry, ok := <-entries:
			if !ok {
				return "", errNoServer
			}
			if addr := entryAddr(entry); addr != "" {
				return addr, nil
			}
		}
	}
}

func entryAddr(entry *zeroconf.ServiceEntry) string {
	var ip net.IP
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0]
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0]
	default:
		return ""
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port))
}
