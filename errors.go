package peel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPointCloud is returned when a point cloud cannot be packed.
	ErrInvalidPointCloud = errors.New("peel: invalid point cloud")

	// ErrRendererBroken is returned by Render after a setup failure, until
	// Release is called.
	ErrRendererBroken = errors.New("peel: renderer unusable after setup failure")

	// ErrInvalidLayerCount is returned for layer counts below 1.
	ErrInvalidLayerCount = errors.New("peel: layer count must be at least 1")
)

// SetupError reports a failure to create GPU resources: shader build,
// vertex upload or surface allocation. It is fatal for the renderer.
type SetupError struct {
	// Op names the failed step, e.g. "build peeling program".
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("peel: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func setupError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SetupError{Op: op, Err: err}
}
