package types

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrorKindConfiguration       ErrorKind = "configuration"
	ErrorKindExtraction          ErrorKind = "extraction"
	ErrorKindBuild               ErrorKind = "build"
	ErrorKindInstall             ErrorKind = "install"
	ErrorKindCleanup             ErrorKind = "cleanup"
	ErrorKindDuplicateResolution ErrorKind = "duplicate-resolution"
)

// PipelineError attaches the failing phase to an underlying coded error.
// ExitCode is set only when an external step ran and exited non-zero (or
// was killed, in which case it is -1).
type PipelineError struct {
	Kind     ErrorKind
	Phase    BuildPhase
	ExitCode int
	Err      error
}

func NewPipelineError(kind ErrorKind, phase BuildPhase, err error) *PipelineError {
	return &PipelineError{Kind: kind, Phase: phase, Err: err}
}

func (e *PipelineError) WithExitCode(code int) *PipelineError {
	e.ExitCode = code
	return e
}

func (e *PipelineError) Error() string {
	var builder strings.Builder
	builder.WriteString(string(e.Kind))
	builder.WriteString(" error")
	if e.Phase != "" {
		builder.WriteString(" in ")
		builder.WriteString(string(e.Phase))
	}
	if e.ExitCode != 0 {
		builder.WriteString(fmt.Sprintf(" (exit code %d)", e.ExitCode))
	}
	if e.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Err.Error())
	}
	return builder.String()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pipelineErr *PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
