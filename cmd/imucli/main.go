package main

import (
	"context"
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/cli/sh"
	"github.com/robotalks/inertial.go/pkg/config"
	"github.com/robotalks/inertial.go/pkg/display/mqtt"
	"github.com/robotalks/inertial.go/pkg/display/tui"
)

//go-build: CGO_ENABLED=0

var (
	dashboard   bool
	autoConnect = true
)

func init() {
	config.SetupFlags()
	flag.BoolVar(&dashboard, "tui", dashboard, "Show the terminal dashboard instead of the shell.")
	flag.BoolVar(&autoConnect, "connect", autoConnect, "Connect the link on start.")
}

func main() {
	flag.Parse()
	conf := config.MustNewConfig()
	ctl := sh.NewController(conf)
	defer ctl.Close()

	var displays acquire.DisplayMux
	if conf.MQTTURL != "" {
		remote := setupMQTT(conf, ctl)
		defer remote.Queue.Close()
		defer remote.Close()
		displays = append(displays, remote)
	}

	if dashboard {
		dash := tui.New(tui.Model{Title: "IMU " + conf.LinkURL, Control: ctl.Command})
		ctl.Display = append(displays, dash)
		ctl.Reporter = dash
		if autoConnect {
			if err := ctl.Connect(context.Background(), ""); err != nil {
				glog.Exitf("connect %q failed: %v", conf.LinkURL, err)
			}
		}
		if err := dash.Run(); err != nil {
			glog.Errorf("dashboard: %v", err)
			os.Exit(1)
		}
		return
	}

	if len(displays) > 0 {
		ctl.Display = displays
	}
	sh.New(ctl).WithAutoConnect(autoConnect).Run(flag.Args()...)
}

func setupMQTT(conf *config.Config, ctl *sh.Controller) *mqtt.Display {
	codec, err := mqtt.CodecByName(conf.MQTTEncoding)
	if err != nil {
		glog.Exit(err)
	}
	id := conf.DeviceID
	if id == "" {
		id = mqtt.DeviceID()
	}
	q, err := mqtt.NewQueueFromURL(conf.MQTTURL, id)
	if err != nil {
		glog.Exitf("mqtt %q: %v", conf.MQTTURL, err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exitf("mqtt connect %q: %v", conf.MQTTURL, token.Error())
	}
	d := mqtt.NewDisplay(q, id, codec)
	if err := d.SetStatus("online"); err != nil {
		glog.Warningf("mqtt status: %v", err)
	}
	d.HandleControl(ctl)
	glog.Infof("publishing to %s as %s", conf.MQTTURL, id)
	return d
}
