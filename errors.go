package warp

import (
	"errors"
	"fmt"

	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/program"
	"github.com/gogpu/warp/texture"
)

// Code is the result of a warp operation. The numeric values are stable.
type Code int

// Result codes.
const (
	CodeSuccess Code = iota
	CodeError
	CodeNoContext
	CodeNoDevice
	CodeNoQueue
	CodeCompilationFailure
	CodeKernelNotFound
	CodeInvalidScreenDimensions
	CodeTextureWrapFailure
	CodeTextureAcquireFailure
	CodeTextureReleaseFailure
	CodeDepthBufferAllocationFailure
	CodeFrameworkInitFailure
)

var codeNames = [...]string{
	CodeSuccess:                      "success",
	CodeError:                        "error",
	CodeNoContext:                    "no compute context",
	CodeNoDevice:                     "no device",
	CodeNoQueue:                      "no queue",
	CodeCompilationFailure:           "compilation failure",
	CodeKernelNotFound:               "kernel not found",
	CodeInvalidScreenDimensions:      "invalid screen dimensions",
	CodeTextureWrapFailure:           "texture wrap failure",
	CodeTextureAcquireFailure:        "texture acquire failure",
	CodeTextureReleaseFailure:        "texture release failure",
	CodeDepthBufferAllocationFailure: "depth buffer allocation failure",
	CodeFrameworkInitFailure:         "framework init failure",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Errors reported by the root package itself.
var (
	// ErrDepthBuffer is returned when the scratch depth buffer cannot grow
	// to the screen size.
	ErrDepthBuffer = errors.New("warp: depth buffer allocation failed")

	// ErrMissingTexture is returned when a required texture is nil.
	ErrMissingTexture = errors.New("warp: missing texture")
)

// Error is returned by every failing warp operation.
type Error struct {
	Op   string // operation, e.g. "scatter"
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "warp: " + e.Op + ": " + e.Code.String()
	}
	return "warp: " + e.Op + ": " + e.Code.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the result code of err. A nil error is CodeSuccess.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return classify(err)
}

// classify maps a sentinel from the sub-packages to its result code.
func classify(err error) Code {
	switch {
	case errors.Is(err, program.ErrInvalidScreen):
		return CodeInvalidScreenDimensions
	case errors.Is(err, program.ErrKernelNotFound):
		return CodeKernelNotFound
	case errors.Is(err, program.ErrCompilation):
		return CodeCompilationFailure
	case errors.Is(err, texture.ErrWrap):
		return CodeTextureWrapFailure
	case errors.Is(err, texture.ErrAcquire):
		return CodeTextureAcquireFailure
	case errors.Is(err, texture.ErrRelease):
		return CodeTextureReleaseFailure
	case errors.Is(err, ErrDepthBuffer):
		return CodeDepthBufferAllocationFailure
	case errors.Is(err, device.ErrNoContext):
		return CodeNoContext
	case errors.Is(err, device.ErrNoDevice):
		return CodeNoDevice
	case errors.Is(err, device.ErrNoQueue):
		return CodeNoQueue
	case errors.Is(err, device.ErrInit):
		return CodeFrameworkInitFailure
	default:
		return CodeError
	}
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Code: CodeOf(err), Err: err}
}
