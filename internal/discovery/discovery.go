// Package discovery browses mDNS for network-reachable SoapySDR servers
// (SoapyRemote instances). Like local enumeration it is diagnostic only:
// a discovered server still has to be selected explicitly via device args.
package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// DefaultService is the DNS-SD service type SoapyRemote servers advertise.
const DefaultService = "_soapy._tcp"

// Server is one discovered SoapySDR server.
type Server struct {
	Instance  string
	Hostname  string
	Addresses []net.IP
	Port      int
	TXT       []string
}

// DeviceArgs renders the kwargs selector that opens this server through the
// remote driver. Returns "" when no address was resolved.
func (s Server) DeviceArgs() string {
	if len(s.Addresses) == 0 {
		return ""
	}
	ip := s.Addresses[0]
	host := ip.String()
	if ip.To4() == nil {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("driver=remote,remote=tcp://%s:%d", host, s.Port)
}

// Browse performs a blocking mDNS browse for the given service type and
// returns deduplicated server entries sorted by hostname. An empty service
// selects DefaultService.
func Browse(ctx context.Context, service string, timeout time.Duration) ([]Server, error) {
	if service == "" {
		service = DefaultService
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("resolver error: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(map[string]Server)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
				addrs = append(addrs, e.AddrIPv4...)
				addrs = append(addrs, e.AddrIPv6...)
				key := fmt.Sprintf("%s|%d", e.HostName, e.Port)
				found[key] = Server{
					Instance:  unescapeInstance(e.Instance),
					Hostname:  e.HostName,
					Addresses: addrs,
					Port:      e.Port,
					TXT:       append([]string{}, e.Text...),
				}
			case <-browseCtx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(browseCtx, service, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse error: %w", err)
	}
	<-done

	out := make([]Server, 0, len(found))
	for _, s := range found {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hostname < out[j].Hostname })
	return out, nil
}

// unescapeInstance removes zeroconf escape sequences from an instance name.
func unescapeInstance(s string) string {
	return strings.ReplaceAll(s, `\ `, " ")
}
