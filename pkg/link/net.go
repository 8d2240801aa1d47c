package link

import (
	"context"
	"io"
	"net"

	"golang.org/x/net/websocket"
)

func init() {
	Register("tcp", OpenTCP)
	Register("ws", OpenWebSocket)
	Register("wss", OpenWebSocket)
}

// OpenTCP dials a TCP endpoint.
func OpenTCP(ctx context.Context, ep Endpoint) (io.ReadWriteCloser, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", ep.Address)
}

// OpenWebSocket dials a websocket endpoint. Bytes are sent as binary frames.
func OpenWebSocket(ctx context.Context, ep Endpoint) (io.ReadWriteCloser, error) {
	origin := *ep.URL
	origin.Scheme, origin.Path, origin.RawQuery = "http", "/", ""
	if ep.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conf, err := websocket.NewConfig(ep.Address, origin.String())
	if err != nil {
		return nil, err
	}
	conn, err := conf.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
