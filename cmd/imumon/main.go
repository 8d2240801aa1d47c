package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/display/mqtt"
	"github.com/robotalks/inertial.go/pkg/display/text"
	"github.com/robotalks/inertial.go/pkg/display/tui"
)

var (
	mqttURL  = "mqtt://localhost:1883/imu/"
	encoding = "json"
	deviceID = "+"
	dash     bool
)

func init() {
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&encoding, "encoding", encoding, "Sample encoding: json or proto.")
	flag.StringVar(&deviceID, "id", deviceID, "Device to monitor, + for all.")
	flag.BoolVar(&dash, "tui", dash, "Show the terminal dashboard of a single device.")
}

func device(topic string) string {
	return strings.SplitN(topic, "/", 2)[0]
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	codec, err := mqtt.CodecByName(encoding)
	if err != nil {
		log.Fatalln(err)
	}
	q, err := mqtt.NewQueueFromURL(mqttURL, "")
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	show := func(topic string, snap acquire.Snapshot) {
		log.Printf("%s %s", device(topic), text.Line(snap))
	}
	status := func(topic string, payload []byte) {
		log.Printf("%s status %s", device(topic), payload)
	}

	var d *tui.Display
	if dash {
		if deviceID == "+" {
			log.Fatalln("-tui requires -id")
		}
		control := func(args []string) error {
			token := q.Pub(deviceID+"/"+mqtt.TopicControl, []byte(strings.Join(args, " ")))
			token.Wait()
			return token.Error()
		}
		d = tui.New(tui.Model{Title: "IMU " + deviceID, Control: control})
		show = func(_ string, snap acquire.Snapshot) {
			d.Program.Send(tui.SampleMsg(snap))
		}
		status = func(_ string, payload []byte) {
			d.Program.Send(tui.StatusMsg(payload))
		}
	}

	q.Sub(deviceID+"/"+mqtt.TopicSample, func(topic string, payload []byte) {
		snap, err := codec.Decode(payload)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		show(topic, snap)
	})
	q.Sub(deviceID+"/"+mqtt.TopicStatus, status)

	if d != nil {
		if err := d.Run(); err != nil {
			log.Println(err)
		}
		return
	}
	<-(chan struct{})(nil)
}
