// Package mqtt publishes samples to an MQTT broker and receives remote
// control commands.
//
// Topics, under the prefix from the broker URL:
//
//	<id>/sample  encoded samples
//	<id>/status  retained "online" or "offline"
//	<id>/ctl     commands, e.g. "collect", "stop", "log off"
package mqtt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/inertial.go/pkg/acquire"
)

// Topic suffixes.
const (
	TopicSample  = "sample"
	TopicStatus  = "status"
	TopicControl = "ctl"
)

// ErrPublishTimeout indicates the broker didn't acknowledge in time.
var ErrPublishTimeout = errors.New("publish timeout")

// DefaultPublishTimeout bounds the wait for a publish.
const DefaultPublishTimeout = 100 * time.Millisecond

// DeviceID returns an ID of this machine usable in topics.
func DeviceID() string {
	id, err := machineid.ProtectedID("inertial")
	if err != nil {
		glog.Warningf("machine ID not available: %v", err)
		return "imu"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// Commander executes a remote command.
type Commander interface {
	Command(args []string) error
}

// CommandFunc is func type of Commander.
type CommandFunc func([]string) error

// Command implements Commander.
func (f CommandFunc) Command(args []string) error {
	return f(args)
}

// Display publishes samples of one device.
type Display struct {
	Queue    *Queue
	DeviceID string
	Codec    Codec
	Timeout  time.Duration
	// Changed only publishes samples not published before.
	Changed bool

	seq     uint64
	control *Subscription
}

// NewDisplay creates a Display.
func NewDisplay(q *Queue, deviceID string, codec Codec) *Display {
	if deviceID == "" {
		deviceID = DeviceID()
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Display{Queue: q, DeviceID: deviceID, Codec: codec, Timeout: DefaultPublishTimeout, Changed: true}
}

// Topic returns the full topic (without prefix) of a suffix.
func (d *Display) Topic(suffix string) string {
	return d.DeviceID + "/" + suffix
}

// ShowSample implements acquire.Display.
func (d *Display) ShowSample(ctx context.Context, snap acquire.Snapshot) error {
	if d.Changed && snap.Seq == d.seq {
		return nil
	}
	payload, err := d.Codec.Encode(snap)
	if err != nil {
		return err
	}
	d.seq = snap.Seq
	token := d.Queue.Pub(d.Topic(TopicSample), payload)
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// SetStatus publishes the retained status.
func (d *Display) SetStatus(status string) error {
	token := d.Queue.PubWith(d.Topic(TopicStatus), []byte(status), 1, true)
	token.Wait()
	return token.Error()
}

// HandleControl subscribes the control topic. Each message is split into
// words and passed to cmdr.
func (d *Display) HandleControl(cmdr Commander) {
	if d.control != nil {
		d.control.Close()
	}
	d.control = d.Queue.Sub(d.Topic(TopicControl), func(topic string, payload []byte) {
		args := strings.Fields(string(payload))
		if len(args) == 0 {
			return
		}
		glog.Infof("remote command: %s", strings.Join(args, " "))
		if err := cmdr.Command(args); err != nil {
			glog.Warningf("remote command %q failed: %v", args[0], err)
		}
	})
}

// Close unsubscribes the control topic.
func (d *Display) Close() error {
	if d.control == nil {
		return nil
	}
	err := d.control.Close()
	d.control = nil
	return err
}
