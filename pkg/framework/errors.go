package framework

import "strings"

// AggregatedError collects the errors of goroutines or fan-out calls
// which fail independently.
type AggregatedError struct {
	Errors []error
}

// Error implements error. Each error is on its own line.
func (e *AggregatedError) Error() string {
	var sb strings.Builder
	sb.WriteString("Multiple errors:")
	for _, err := range e.Errors {
		sb.WriteString("\n" + err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is and errors.As inspect every collected error.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add collects errs, nil values are ignored.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil if nothing was collected.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
