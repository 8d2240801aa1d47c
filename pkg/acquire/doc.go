// Package acquire runs the acquisition of samples from the sensor platform.
//
// An Acquisition owns the wire.Channel and the wire.Decoder while a run is
// active. A run has two loops: the acquisition loop, which either streams
// (and logs) or polls single samples, and the display loop, which shows the
// latest published sample at a fixed interval. Completed frames are
// published as immutable snapshots, so the display never observes a
// partially decoded sample.
package acquire
