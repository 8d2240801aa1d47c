package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/sensor"
)

// Codec encodes snapshots into MQTT payloads.
type Codec interface {
	Encode(acquire.Snapshot) ([]byte, error)
	Decode([]byte) (acquire.Snapshot, error)
}

// CodecByName returns the codec of an encoding name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "proto":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// Message is the payload layout of a sample.
type Message struct {
	Seq            uint64     `json:"seq"`
	Time           int64      `json:"time"` // unix milliseconds
	Delta          int16      `json:"delta"`
	Acceleration   [3]float64 `json:"acceleration"`
	RotationalRate [3]float64 `json:"rotational_rate"`
	Altitude       float64    `json:"altitude"`
	Temperature    float64    `json:"temperature"`
	Light          float64    `json:"light"`
	Errors         []string   `json:"errors,omitempty"`
}

// MessageFrom converts a snapshot.
func MessageFrom(snap acquire.Snapshot) Message {
	m := Message{
		Seq:            snap.Seq,
		Delta:          snap.Delta,
		Acceleration:   snap.Acceleration,
		RotationalRate: snap.RotationalRate,
		Altitude:       snap.Altitude,
		Temperature:    snap.Temperature,
		Light:          snap.Light,
	}
	if !snap.Time.IsZero() {
		m.Time = snap.Time.UnixMilli()
	}
	for _, c := range sensor.Channels {
		if snap.Errors.Has(c) {
			m.Errors = append(m.Errors, c.String())
		}
	}
	return m
}

// Snapshot converts back to a snapshot.
func (m *Message) Snapshot() acquire.Snapshot {
	snap := acquire.Snapshot{
		Sample: sensor.Sample{
			Delta:          m.Delta,
			Acceleration:   m.Acceleration,
			RotationalRate: m.RotationalRate,
			Altitude:       m.Altitude,
			Temperature:    m.Temperature,
			Light:          m.Light,
		},
		Seq: m.Seq,
	}
	if m.Time != 0 {
		snap.Time = time.UnixMilli(m.Time)
	}
	for _, name := range m.Errors {
		for _, c := range sensor.Channels {
			if c.String() == name {
				snap.Errors.Set(c)
			}
		}
	}
	return snap
}

// JSONCodec encodes Message in JSON.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(snap acquire.Snapshot) ([]byte, error) {
	return json.Marshal(MessageFrom(snap))
}

// Decode implements Codec.
func (JSONCodec) Decode(payload []byte) (acquire.Snapshot, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return acquire.Snapshot{}, err
	}
	return m.Snapshot(), nil
}

// ProtoCodec encodes Message as a google.protobuf.Struct with the same
// field names as JSONCodec.
type ProtoCodec struct{}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func listValue(vals [3]float64) *structpb.Value {
	l := &structpb.ListValue{}
	for _, v := range vals {
		l.Values = append(l.Values, numberValue(v))
	}
	return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: l}}
}

// Encode implements Codec.
func (ProtoCodec) Encode(snap acquire.Snapshot) ([]byte, error) {
	m := MessageFrom(snap)
	st := &structpb.Struct{Fields: map[string]*structpb.Value{
		"seq":             numberValue(float64(m.Seq)),
		"time":            numberValue(float64(m.Time)),
		"delta":           numberValue(float64(m.Delta)),
		"acceleration":    listValue(m.Acceleration),
		"rotational_rate": listValue(m.RotationalRate),
		"altitude":        numberValue(m.Altitude),
		"temperature":     numberValue(m.Temperature),
		"light":           numberValue(m.Light),
	}}
	if len(m.Errors) > 0 {
		l := &structpb.ListValue{}
		for _, name := range m.Errors {
			l.Values = append(l.Values, &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: name}})
		}
		st.Fields["errors"] = &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: l}}
	}
	return proto.Marshal(st)
}

// Decode implements Codec.
func (ProtoCodec) Decode(payload []byte) (acquire.Snapshot, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(payload, &st); err != nil {
		return acquire.Snapshot{}, err
	}
	number := func(name string) float64 {
		return st.Fields[name].GetNumberValue()
	}
	triple := func(name string) (v [3]float64) {
		for i, item := range st.Fields[name].GetListValue().GetValues() {
			if i < len(v) {
				v[i] = item.GetNumberValue()
			}
		}
		return
	}
	m := Message{
		Seq:            uint64(number("seq")),
		Time:           int64(number("time")),
		Delta:          int16(number("delta")),
		Acceleration:   triple("acceleration"),
		RotationalRate: triple("rotational_rate"),
		Altitude:       number("altitude"),
		Temperature:    number("temperature"),
		Light:          number("light"),
	}
	for _, item := range st.Fields["errors"].GetListValue().GetValues() {
		m.Errors = append(m.Errors, item.GetStringValue())
	}
	return m.Snapshot(), nil
}
