package effectchain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures and warnings.
type Kind int

const (
	// KindInvalidParameter marks a parameter or input rejected before any
	// stage ran.
	KindInvalidParameter Kind = iota + 1

	// KindParameterClamped marks a parameter moved into range. Only ever
	// reported as a Warning.
	KindParameterClamped

	// KindEmptyInput marks a zero-length input. Only ever reported as a
	// Warning.
	KindEmptyInput

	// KindNumericalFailure marks a stage that failed or produced NaN/Inf.
	KindNumericalFailure

	// KindCanceled marks a run stopped by its context.
	KindCanceled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid parameter"
	case KindParameterClamped:
		return "parameter clamped"
	case KindEmptyInput:
		return "empty input"
	case KindNumericalFailure:
		return "numerical failure"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is on an *Error of the corresponding kind.
var (
	ErrInvalidParameter = errors.New("effectchain: invalid parameter")
	ErrNumericalFailure = errors.New("effectchain: numerical failure")
	ErrCanceled         = errors.New("effectchain: canceled")

	// ErrUnknownStage is returned when the registry lacks a stage the
	// chain needs.
	ErrUnknownStage = errors.New("effectchain: unknown stage")
)

// Error is the failure type returned by Engine.Process.
type Error struct {
	Kind  Kind
	Stage string // empty when raised during validation
	Param string // offending parameter, if any
	Msg   string
	Err   error // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("effectchain: ")
	b.WriteString(e.Kind.String())
	if e.Stage != "" {
		fmt.Fprintf(&b, " in stage %s", e.Stage)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " (%s)", e.Param)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidParameter:
		return ErrInvalidParameter
	case KindNumericalFailure:
		return ErrNumericalFailure
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// Warning is a non-fatal condition attached to a successful Result.
type Warning struct {
	Kind      Kind
	Param     string
	Requested float64
	Applied   float64
	Msg       string
}

func (w Warning) String() string {
	if w.Kind == KindParameterClamped {
		return fmt.Sprintf("%s: %s %g clamped to %g", w.Kind, w.Param, w.Requested, w.Applied)
	}
	if w.Msg != "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Msg)
	}

	return w.Kind.String()
}

func invalidParam(param, msg string, cause error) *Error {
	return &Error{Kind: KindInvalidParameter, Param: param, Msg: msg, Err: cause}
}
