package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const (
	discoveryService = "_nexuscafe._tcp"
	discoveryDomain  = "local."
)

// startDiscovery advertises the gRPC port over mDNS so desk terminals on
// the LAN can find the server without configuration.
func startDiscovery(instance, grpcAddr string, log *zap.Logger) (func(), error) {
	_, portStr, err := net.SplitHostPort(grpcAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid grpc address %q: %w", grpcAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid grpc port %q: %w", portStr, err)
	}

	srv, err := zeroconf.Register(instance, discoveryService, discoveryDomain, port,
		[]string{"service=nexuscafe.TableService"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mdns service: %w", err)
	}
	log.Info("advertising on mdns",
		zap.String("instance", instance),
		zap.String("service", discoveryService),
		zap.Int("port", port))
	return srv.Shutdown, nil
}
