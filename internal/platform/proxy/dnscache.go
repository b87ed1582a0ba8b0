package proxy

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// unknownEndpoint tags hosts that were resolved without being warmed.
const unknownEndpoint = "unknown"

// onRefreshed is called after every refresh round.
var onRefreshed = func() {}

type DNSCache interface {
	LookupIPAddr(context.Context, string) (names []net.IPAddr, err error)
	Warm(ctx context.Context, endpoint string, host string) error
	Refresh()
	Stop()
}

type DNSCacheOptions struct {
	UseCache      bool
	Logger        zerolog.Logger
	FetchTimeout  time.Duration
	LookupTimeout time.Duration
}

// hostEntry is the cached resolution of one geo node host.
type hostEntry struct {
	endpoint  string
	addrs     []net.IPAddr
	refreshed time.Time
}

// Resolver resolves the geo node hosts. With the cache enabled the answers
// are kept in memory and refreshed in the background. A failed refresh keeps
// serving the previous answer.
type Resolver struct {
	resolver *net.Resolver
	options  DNSCacheOptions

	mu    sync.RWMutex
	hosts map[string]*hostEntry

	stopOnce sync.Once
	cancel   context.CancelFunc
}

// NewDNSResolver initializes the resolver. With the cache enabled it starts
// the refresh loop, call Stop to end it.
func NewDNSResolver(resolver *net.Resolver, options *DNSCacheOptions) (DNSCache, error) {

	if options == nil {
		return nil, errors.New("options cannot be nil")
	}
	if options.UseCache && options.FetchTimeout <= 0 {
		return nil, errors.Errorf("invalid DNS cache refresh interval %s", options.FetchTimeout)
	}

	r := &Resolver{
		resolver: resolver,
		options:  *options,
		hosts:    make(map[string]*hostEntry),
	}

	if options.UseCache {
		ctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		go r.refreshLoop(ctx, onRefreshed)
	}

	return r, nil
}

func (r *Resolver) refreshLoop(ctx context.Context, refreshed func()) {
	ticker := time.NewTicker(r.options.FetchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Refresh()
			refreshed()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Resolver) lookup(ctx context.Context, host string) ([]net.IPAddr, error) {
	if r.options.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.LookupTimeout)
		defer cancel()
	}

	addrs, err := r.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errors.Errorf("no addresses found for %s", host)
	}

	return addrs, nil
}

// Warm resolves the host of a geo node endpoint before the first request.
// A host that can not be resolved fails the startup.
func (r *Resolver) Warm(ctx context.Context, endpoint string, host string) error {

	addrs, err := r.lookup(ctx, host)
	if err != nil {
		return errors.Wrapf(err, "resolving %s endpoint host %s", endpoint, host)
	}

	r.options.Logger.Debug().
		Str("endpoint", endpoint).
		Str("host", host).
		Int("addresses", len(addrs)).
		Msg("Geo node host resolved")

	if r.options.UseCache {
		r.store(endpoint, host, addrs)
	}

	return nil
}

func (r *Resolver) store(endpoint string, host string, addrs []net.IPAddr) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.hosts[host]
	if !ok {
		entry = &hostEntry{endpoint: endpoint}
		r.hosts[host] = entry
	} else if entry.endpoint == unknownEndpoint {
		entry.endpoint = endpoint
	}
	entry.addrs = addrs
	entry.refreshed = time.Now()
}

// LookupIPAddr returns the addresses of the host, from the cache when it is
// enabled.
func (r *Resolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {

	if !r.options.UseCache {
		return r.lookup(ctx, host)
	}

	r.mu.RLock()
	entry, ok := r.hosts[host]
	var addrs []net.IPAddr
	if ok {
		addrs = entry.addrs
	}
	r.mu.RUnlock()

	if ok {
		return addrs, nil
	}

	addrs, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	r.store(unknownEndpoint, host, addrs)

	return addrs, nil
}

// Refresh resolves every cached host again.
func (r *Resolver) Refresh() {

	type target struct {
		host, endpoint string
		age            time.Duration
	}

	r.mu.RLock()
	targets := make([]target, 0, len(r.hosts))
	for host, entry := range r.hosts {
		targets = append(targets, target{host: host, endpoint: entry.endpoint, age: time.Since(entry.refreshed)})
	}
	r.mu.RUnlock()

	for _, t := range targets {
		addrs, err := r.lookup(context.Background(), t.host)
		if err != nil {
			r.options.Logger.Error().
				Err(err).
				Str("endpoint", t.endpoint).
				Str("host", t.host).
				Dur("cached_for", t.age).
				Msg("Failed to refresh geo node address")
			continue
		}
		r.store(t.endpoint, t.host, addrs)
	}
}

// Stop ends the refresh loop. It is safe to call more than once.
func (r *Resolver) Stop() {
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})
}
