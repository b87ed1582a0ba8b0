package proxy

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/foxcpp/go-mockdns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDNSCacheRefresh(t *testing.T) {

	srv, err := mockdns.NewServer(map[string]mockdns.Zone{
		"geo-node.example.org.": {
			A: []string{"1.2.3.4", "5.6.7.8"},
		},
	}, false)
	require.NoError(t, err)
	defer srv.Close()

	srvUpdatedOrder, err := mockdns.NewServer(map[string]mockdns.Zone{
		"geo-node.example.org.": {
			A: []string{"5.6.7.8", "1.2.3.4"},
		},
	}, false)
	require.NoError(t, err)
	defer srvUpdatedOrder.Close()

	r := &net.Resolver{}
	srv.PatchNet(r)

	dnsCache, err := NewDNSResolver(r, &DNSCacheOptions{
		UseCache:      true,
		Logger:        zerolog.Nop(),
		FetchTimeout:  1000 * time.Millisecond,
		LookupTimeout: 400 * time.Millisecond,
	})
	require.NoError(t, err)
	defer dnsCache.Stop()

	addr, err := dnsCache.LookupIPAddr(context.Background(), "geo-node.example.org")
	require.NoError(t, err)
	require.Equal(t, "1.2.3.4", addr[0].String())

	srvUpdatedOrder.PatchNet(r)

	// the cached value is served until the next refresh
	time.Sleep(600 * time.Millisecond)

	addr, err = dnsCache.LookupIPAddr(context.Background(), "geo-node.example.org")
	require.NoError(t, err)
	require.Equal(t, "1.2.3.4", addr[0].String())

	time.Sleep(800 * time.Millisecond)

	addr, err = dnsCache.LookupIPAddr(context.Background(), "geo-node.example.org")
	require.NoError(t, err)
	require.Equal(t, "5.6.7.8", addr[0].String())
}

func TestDNSWithoutCache(t *testing.T) {

	srv, err := mockdns.NewServer(map[string]mockdns.Zone{
		"geo-node.example.org.": {
			A: []string{"1.2.3.4"},
		},
	}, false)
	require.NoError(t, err)
	defer srv.Close()

	r := &net.Resolver{}
	srv.PatchNet(r)

	dnsCache, err := NewDNSResolver(r, &DNSCacheOptions{
		UseCache:      false,
		Logger:        zerolog.Nop(),
		LookupTimeout: 400 * time.Millisecond,
	})
	require.NoError(t, err)
	defer dnsCache.Stop()

	addr, err := dnsCache.LookupIPAddr(context.Background(), "geo-node.example.org")
	require.NoError(t, err)
	require.Len(t, addr, 1)
	require.Equal(t, "1.2.3.4", addr[0].String())
}

func TestDNSCacheWarmEndpoints(t *testing.T) {

	srv, err := mockdns.NewServer(map[string]mockdns.Zone{
		"query.geo-node.example.org.": {
			A: []string{"1.2.3.4"},
		},
		"status.geo-node.example.org.": {
			A: []string{"5.6.7.8"},
		},
	}, false)
	require.NoError(t, err)
	defer srv.Close()

	// the status host disappears after the warm up
	srvQueryOnly, err := mockdns.NewServer(map[string]mockdns.Zone{
		"query.geo-node.example.org.": {
			A: []string{"1.2.3.5"},
		},
	}, false)
	require.NoError(t, err)
	defer srvQueryOnly.Close()

	r := &net.Resolver{}
	srv.PatchNet(r)

	var logs bytes.Buffer

	// the refresh loop is not expected to run during the test
	dnsCache, err := NewDNSResolver(r, &DNSCacheOptions{
		UseCache:      true,
		Logger:        zerolog.New(&logs).Level(zerolog.ErrorLevel),
		FetchTimeout:  time.Hour,
		LookupTimeout: 400 * time.Millisecond,
	})
	require.NoError(t, err)
	defer dnsCache.Stop()

	require.NoError(t, dnsCache.Warm(context.Background(), "query", "query.geo-node.example.org"))
	require.NoError(t, dnsCache.Warm(context.Background(), "status", "status.geo-node.example.org"))

	err = dnsCache.Warm(context.Background(), "status", "missing.geo-node.example.org")
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolving status endpoint host missing.geo-node.example.org")

	srvQueryOnly.PatchNet(r)
	dnsCache.Refresh()

	addr, err := dnsCache.LookupIPAddr(context.Background(), "query.geo-node.example.org")
	require.NoError(t, err)
	require.Equal(t, "1.2.3.5", addr[0].String())

	// a failed refresh keeps the previous answer
	addr, err = dnsCache.LookupIPAddr(context.Background(), "status.geo-node.example.org")
	require.NoError(t, err)
	require.Equal(t, "5.6.7.8", addr[0].String())

	require.Contains(t, logs.String(), `"endpoint":"status"`)
	require.Contains(t, logs.String(), `"host":"status.geo-node.example.org"`)
	require.NotContains(t, logs.String(), `"endpoint":"query"`)

	// Stop may be called by every pool sharing the resolver
	dnsCache.Stop()
}
