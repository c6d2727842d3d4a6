// Package mdns advertises the VTN on the local network and lets clients
// discover running VTNs. The service publishes a TXT record whose
// local_url property is the authoritative URL for VENs to connect to.
package mdns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"openadr/internal/shared/config"
	"openadr/internal/shared/logger"
)

// DefaultServiceType is the mDNS service VTNs register under.
const DefaultServiceType = "_openadr3._tcp.local."

// DefaultBrowseTimeout bounds a discovery run when the caller gives no
// deadline of its own.
const DefaultBrowseTimeout = time.Second

// protocolVersion is advertised in the TXT record.
const protocolVersion = "3.0"

// txt record property names.
const (
	txtVersion  = "version"
	txtBasePath = "base_path"
	txtLocalURL = "local_url"
)

// Advertiser publishes the VTN service until Shutdown.
type Advertiser struct {
	server *zeroconf.Server
	logger logger.Interface
}

// Advertise registers the VTN on the local network.
func Advertise(cfg *config.MdnsConfig, port int, log logger.Interface) (*Advertiser, error) {
	serviceType := cfg.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	basePath := strings.TrimSuffix(cfg.BasePath, "/")

	host := cfg.HostName
	if host == "" {
		host = cfg.ServerName
	}
	localURL := fmt.Sprintf("http://%s:%d%s", host, port, basePath)

	txt := []string{
		txtVersion + "=" + protocolVersion,
		txtBasePath + "=" + basePath,
		txtLocalURL + "=" + localURL,
	}

	var server *zeroconf.Server
	var err error
	if cfg.IPAddress != "" {
		server, err = zeroconf.RegisterProxy(cfg.ServerName, serviceType, "local.", port, host, []string{cfg.IPAddress}, txt, nil)
	} else {
		server, err = zeroconf.Register(cfg.ServerName, serviceType, "local.", port, txt, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	log.Infow("mDNS service registered",
		"service_type", serviceType, "instance", cfg.ServerName, "local_url", localURL)
	return &Advertiser{server: server, logger: log}, nil
}

// Shutdown withdraws the service announcement.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
	a.logger.Infow("mDNS service withdrawn")
}

// DiscoveredVtn is one VTN found on the local network.
type DiscoveredVtn struct {
	URL          string
	InstanceName string
	Version      string
	BasePath     string
}

// DiscoverOptions tunes a discovery run.
type DiscoverOptions struct {
	// ServiceType overrides the default service type.
	ServiceType string
	// Timeout bounds the browse. Zero means DefaultBrowseTimeout.
	Timeout time.Duration
	// Limit stops the browse after this many VTNs. Zero means no limit.
	Limit int
}

// Discover browses the local network for VTNs. Entries without a
// local_url TXT property are skipped.
func Discover(ctx context.Context, opts DiscoverOptions, log logger.Interface) ([]DiscoveredVtn, error) {
	serviceType := opts.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(browseCtx, strings.TrimSuffix(serviceType, ".local."), "local.", entries); err != nil {
		return nil, fmt.Errorf("failed to browse mDNS: %w", err)
	}

	var found []DiscoveredVtn
	for entry := range entries {
		vtn, ok := parseEntry(entry)
		if !ok {
			log.Warnw("skipping mDNS entry without local_url", "instance", entry.Instance)
			continue
		}
		found = append(found, vtn)
		if opts.Limit > 0 && len(found) >= opts.Limit {
			cancel()
			break
		}
	}
	return found, nil
}

func parseEntry(entry *zeroconf.ServiceEntry) (DiscoveredVtn, bool) {
	props := parseTxt(entry.Text)
	url, ok := props[txtLocalURL]
	if !ok || url == "" {
		return DiscoveredVtn{}, false
	}
	return DiscoveredVtn{
		URL:          url,
		InstanceName: entry.Instance,
		Version:      props[txtVersion],
		BasePath:     props[txtBasePath],
	}, true
}

func parseTxt(records []string) map[string]string {
	props := make(map[string]string, len(records))
	for _, rec := range records {
		if key, value, ok := strings.Cut(rec, "="); ok {
			props[key] = value
		}
	}
	return props
}
