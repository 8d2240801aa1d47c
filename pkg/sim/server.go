package sim

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/inertial.go/pkg/framework"
)

// Server serves a fresh Platform on every connection.
type Server struct {
	// NewPlatform creates the platform of a connection.
	NewPlatform func() *Platform

	wg sync.WaitGroup
}

func (s *Server) platform() *Platform {
	if s.NewPlatform != nil {
		return s.NewPlatform()
	}
	return NewPlatform()
}

// Serve accepts connections from ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.wg.Wait()
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serveConn(ctx, conn)
			}()
		}
	})
}

// WebSocket returns a handler serving binary websocket connections.
func (s *Server) WebSocket(ctx context.Context) websocket.Handler {
	return func(ws *websocket.Conn) {
		ws.PayloadType = websocket.BinaryFrame
		s.serveConn(ctx, ws)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr()
	glog.Infof("platform connected: %v", remote)
	err := s.platform().Serve(ctx, conn)
	if err != nil && err != context.Canceled {
		glog.Warningf("platform %v: %v", remote, err)
	}
	glog.Infof("platform disconnected: %v", remote)
}
