package openadr3

import (
	"context"
	"errors"
	"time"

	"openadr/internal/infrastructure/mdns"
	"openadr/internal/shared/logger"
)

// ErrNoVtnFound means the browse window passed without any VTN
// answering.
var ErrNoVtnFound = errors.New("no VTN found on the local network")

// DiscoveredVtn is one VTN found on the local network.
type DiscoveredVtn = mdns.DiscoveredVtn

// DiscoverVtns browses the local network for VTNs. A zero timeout uses
// the default browse window.
func DiscoverVtns(ctx context.Context, timeout time.Duration, limit int) ([]DiscoveredVtn, error) {
	return mdns.Discover(ctx, mdns.DiscoverOptions{
		Timeout: timeout,
		Limit:   limit,
	}, logger.NewLogger())
}

// DiscoverAndConnect discovers the first VTN on the local network and
// returns a client pointed at it.
func DiscoverAndConnect(ctx context.Context, opts ...Option) (*Client, error) {
	vtns, err := DiscoverVtns(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(vtns) == 0 {
		return nil, ErrNoVtnFound
	}
	return NewClient(vtns[0].URL, opts...), nil
}
