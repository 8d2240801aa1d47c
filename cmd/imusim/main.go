package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/inertial.go/pkg/framework"
	"github.com/robotalks/inertial.go/pkg/sim"
)

//go-build: CGO_ENABLED=0

var (
	tcpAddr  = ":7700"
	httpAddr = ":7780"
	period   = sim.DefaultPeriod
	dropRate float64
)

func init() {
	flag.StringVar(&tcpAddr, "tcp", tcpAddr, "TCP listening address, empty to disable.")
	flag.StringVar(&httpAddr, "http", httpAddr, "HTTP listening address for websocket on /imu, empty to disable.")
	flag.DurationVar(&period, "period", period, "Streaming period.")
	flag.Float64Var(&dropRate, "drop", dropRate, "Probability of losing a byte in a frame.")
}

func main() {
	flag.Parse()

	server := &sim.Server{NewPlatform: func() *sim.Platform {
		p := sim.NewPlatform()
		p.Period, p.DropRate = period, dropRate
		return p
	}}

	runner := fx.NewRunner().HandleSignals()
	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			glog.Exitf("listen %s: %v", tcpAddr, err)
		}
		glog.Infof("serving tcp on %s", ln.Addr())
		runner.Go(fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error {
			return server.Serve(ctx, ln)
		})))
	}
	if httpAddr != "" {
		runner.Go(fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
			mux := http.NewServeMux()
			mux.Handle("/imu", server.WebSocket(ctx))
			srv := &http.Server{Addr: httpAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			glog.Infof("serving websocket on %s/imu", httpAddr)
			return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
		})))
	}
	if len(runner.Runners) == 0 {
		glog.Exit("nothing to serve")
	}
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
