package acquire

import (
	"context"

	fx "github.com/robotalks/inertial.go/pkg/framework"
)

// Display shows samples.
type Display interface {
	ShowSample(context.Context, Snapshot) error
}

// ShowSampleFunc is func type of Display.
type ShowSampleFunc func(context.Context, Snapshot) error

// ShowSample implements Display.
func (f ShowSampleFunc) ShowSample(ctx context.Context, snap Snapshot) error {
	return f(ctx, snap)
}

// DisplayMux shows a sample on all Displays.
type DisplayMux []Display

// ShowSample implements Display.
func (m DisplayMux) ShowSample(ctx context.Context, snap Snapshot) error {
	var errs fx.AggregatedError
	for _, d := range m {
		errs.Add(d.ShowSample(ctx, snap))
	}
	return errs.Aggregate()
}
