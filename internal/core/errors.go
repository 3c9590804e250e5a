package core

import "fmt"

// ResolutionError means a target could not be mapped to any commit or path in
// the repository. It is fatal for the run; no report is produced.
type ResolutionError struct {
	Target string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve target %q: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("cannot resolve target %q", e.Target)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ClientErrorKind classifies why a review call failed.
type ClientErrorKind string

const (
	// ClientTimeout covers deadline expiry waiting for a verdict.
	ClientTimeout ClientErrorKind = "timeout"
	// ClientMalformedResponse covers responses that could not be parsed
	// into a verdict.
	ClientMalformedResponse ClientErrorKind = "malformed_response"
	// ClientTransport covers every other failure talking to the service.
	ClientTransport ClientErrorKind = "transport"
)

// ClientError is a per-file review failure. It never aborts a run; the
// affected file becomes a skipped fragment with a run-level warning.
type ClientError struct {
	Kind ClientErrorKind
	Path string
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("review of %s failed (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// RenderError means the report was assembled but could not be rendered or
// written. The in-memory report remains usable by the caller.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to write report to %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to render report: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
