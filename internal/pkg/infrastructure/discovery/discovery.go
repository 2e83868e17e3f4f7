package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/grandcat/zeroconf"
)

const (
	ServiceESPHome = "_esphomelib._tcp"
	ServiceHue     = "_hue._tcp"

	DefaultDomain = "local."
)

// ServiceRecord is a single mDNS advertisement picked up during a browse.
type ServiceRecord struct {
	Instance string
	Hostname string
	Address  net.IP
	Port     int
	Text     map[string]string
}

// Addr returns the host:port endpoint the service was advertised on.
func (r ServiceRecord) Addr() string {
	return net.JoinHostPort(r.Address.String(), strconv.Itoa(r.Port))
}

//go:generate moq -rm -out browser_mock.go . Browser

// Browser finds services advertised on the local network.
type Browser interface {
	Browse(ctx context.Context, service string, timeout time.Duration) ([]ServiceRecord, error)
}

func NewBrowser() Browser {
	return &browser{domain: DefaultDomain}
}

type browser struct {
	domain string
}

func (b *browser) Browse(ctx context.Context, service string, timeout time.Duration) ([]ServiceRecord, error) {
	log := logging.GetFromContext(ctx)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 16)
	records := make([]ServiceRecord, 0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			r, ok := recordFrom(entry)
			if !ok {
				continue
			}
			records = append(records, r)
			log.Debug("mdns service found", "service", service, "instance", r.Instance, "address", r.Address.String())
		}
	}()

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = resolver.Browse(browseCtx, service, b.domain, entries)
	if err != nil {
		return nil, fmt.Errorf("mdns browse failed: %w", err)
	}

	<-browseCtx.Done()
	<-done

	return records, nil
}

func recordFrom(entry *zeroconf.ServiceEntry) (ServiceRecord, bool) {
	if entry == nil {
		return ServiceRecord{}, false
	}

	if len(entry.AddrIPv4) == 0 && len(entry.AddrIPv6) == 0 {
		return ServiceRecord{}, false
	}

	addr := entry.AddrIPv4
	if len(addr) == 0 {
		addr = entry.AddrIPv6
	}

	text := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		if key, value, found := strings.Cut(txt, "="); found {
			text[key] = value
		}
	}

	return ServiceRecord{
		Instance: entry.Instance,
		Hostname: entry.HostName,
		Address:  addr[0],
		Port:     entry.Port,
		Text:     text,
	}, true
}
