// Package link opens the transport to the sensor platform from a URL.
//
// Supported URLs:
//
//	serial:///dev/rfcomm0?baud=115200&timeout=100ms
//	tcp://host:port
//	ws://host:port/path (or wss://)
package link

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Defaults.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 100 * time.Millisecond
)

// Endpoint is a parsed link URL.
type Endpoint struct {
	Scheme string
	// Address is the device path for serial, host:port for tcp and the
	// full URL for websocket.
	Address     string
	BaudRate    int
	ReadTimeout time.Duration
	URL         *url.URL
}

// OpenFunc opens a transport.
type OpenFunc func(context.Context, Endpoint) (io.ReadWriteCloser, error)

var (
	openers     = make(map[string]OpenFunc)
	openersLock sync.RWMutex
)

// Register registers the OpenFunc of a URL scheme.
func Register(scheme string, fn OpenFunc) {
	openersLock.Lock()
	openers[scheme] = fn
	openersLock.Unlock()
}

// Schemes lists the registered URL schemes.
func Schemes() []string {
	openersLock.RLock()
	defer openersLock.RUnlock()
	schemes := make([]string, 0, len(openers))
	for scheme := range openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Parse parses a link URL.
func Parse(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid link URL: %w", err)
	}
	ep := Endpoint{
		Scheme:      u.Scheme,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
		URL:         u,
	}
	query := u.Query()
	if val := query.Get("baud"); val != "" {
		if ep.BaudRate, err = strconv.Atoi(val); err != nil || ep.BaudRate <= 0 {
			return ep, fmt.Errorf("invalid baud rate %q", val)
		}
	}
	if val := query.Get("timeout"); val != "" {
		if ep.ReadTimeout, err = time.ParseDuration(val); err != nil {
			return ep, fmt.Errorf("invalid read timeout %q", val)
		}
	}
	switch u.Scheme {
	case "serial":
		ep.Address = u.Path
		if u.Opaque != "" {
			ep.Address = u.Opaque
		} else if u.Host != "" {
			ep.Address = u.Host + u.Path
		}
	case "tcp":
		ep.Address = u.Host
	case "ws", "wss":
		ep.Address = u.String()
	default:
		return ep, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
	if ep.Address == "" {
		return ep, fmt.Errorf("missing address in link URL %q", rawURL)
	}
	return ep, nil
}

// Open opens the transport specified by rawURL.
func Open(ctx context.Context, rawURL string) (io.ReadWriteCloser, error) {
	ep, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}
	openersLock.RLock()
	fn := openers[ep.Scheme]
	openersLock.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("unsupported link URL scheme: %q", ep.Scheme)
	}
	return fn(ctx, ep)
}
