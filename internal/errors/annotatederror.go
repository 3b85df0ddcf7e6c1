// Package errors provides error annotation helpers on top of the standard library.
//
// Errors created with New or Wrap remember where they were created and can carry
// [slog.Attr] annotations. SlogError turns any error chain into a single structured
// logging attribute so that handlers log errors consistently.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// annotatedError is an error with a source location and slog annotations.
type annotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// New creates an annotated error with the caller's source location.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, attrs: attrs, source: callerSource(2)} //nolint:mnd // skip New and Caller.
}

// NewSentinel creates a plain error suitable for package-level sentinel values.
// Sentinels carry no source location since they are created at program start.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // sentinel constructor.
}

// Wrap annotates err with a message, the caller's source location, and optional
// [slog.Attr] annotations surfaced by SlogError.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: err, attrs: attrs, source: callerSource(2)} //nolint:mnd // skip Wrap.
}

// Is reports whether any error in err's chain matches target. See [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target. See [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error. See [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError renders err as a single structured attribute containing the error
// message, the nearest recorded source location, and all annotations found in
// the error chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attr is elided by slog.
	}

	var (
		source      string
		annotations []slog.Attr
	)
	walkChain(err, func(ae *annotatedError) {
		if source == "" {
			source = ae.source
		}
		annotations = append(annotations, ae.attrs...)
	})

	attrs := []slog.Attr{slog.String("message", err.Error())}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Attr{Key: "annotations", Value: slog.GroupValue(annotations...)})
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// DecoratePanic converts a recovered panic value into an annotated error whose
// source points at the panic site rather than the recover site.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}

	var source string
	pcs := make([]uintptr, 64) //nolint:mnd // plenty for locating the panic site.
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	seenPanic := false
	for {
		frame, more := frames.Next()
		switch {
		case strings.HasPrefix(frame.Function, "runtime.gopanic"):
			seenPanic = true
		case seenPanic && !strings.HasPrefix(frame.Function, "runtime."):
			return &annotatedError{ //nolint:exhaustruct // no cause or attrs for panics.
				msg:    fmt.Sprintf("panic: %v", recovered),
				source: shortFile(frame.File) + ":" + strconv.Itoa(frame.Line),
			}
		}
		if !more {
			break
		}
	}

	return &annotatedError{msg: fmt.Sprintf("panic: %v", recovered), source: source} //nolint:exhaustruct
}

// walkChain visits every annotatedError in err's chain, including the branches
// of joined errors.
func walkChain(err error, visit func(*annotatedError)) {
	for err != nil {
		var ae *annotatedError
		if errors.As(err, &ae) {
			// As finds the nearest annotated error; visit it and continue below it.
			visit(ae)
			err = ae.cause
			continue
		}

		switch unwrapped := err.(type) { //nolint:errorlint // chain traversal needs the raw shape.
		case interface{ Unwrap() []error }:
			for _, branch := range unwrapped.Unwrap() {
				walkChain(branch, visit)
			}
			return
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		default:
			return
		}
	}
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return shortFile(file) + ":" + strconv.Itoa(line)
}

func shortFile(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		return file[i+1:]
	}
	return file
}
