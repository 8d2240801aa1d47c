package framework

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type codeError struct{ code int }

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}

func TestAggregatedErrorUnwrap(t *testing.T) {
	var errs AggregatedError
	errs.Add(fmt.Errorf("read: %w", io.EOF), &codeError{code: 3})
	err := fmt.Errorf("close: %w", errs.Aggregate())
	require.True(t, errors.Is(err, io.EOF))
	var codeErr *codeError
	require.True(t, errors.As(err, &codeErr))
	require.Equal(t, 3, codeErr.code)
	require.False(t, errors.Is(err, io.ErrUnexpectedEOF))
}
