// Package errs defines the error kinds the supervisor distinguishes when
// deciding how to react to a failure. Kinds are sentinel values wrapped with
// fmt.Errorf/%w at the call site, not a class hierarchy — callers compare
// with errors.Is.
package errs

import "errors"

var (
	// ErrConfig covers invalid or missing configuration. Fatal to
	// Initializing; the only kind allowed to surface before the loop starts.
	ErrConfig = errors.New("config error")

	// ErrAdapterUnavailable means the chosen agent binary or its
	// credentials are not present. Fatal to Initializing unless a fallback
	// adapter is configured.
	ErrAdapterUnavailable = errors.New("adapter unavailable")

	// ErrAdapterFailure covers a non-zero exit, a timeout, or output
	// overflow from an agent invocation. Recorded against the iteration;
	// counts toward the consecutive-failure streak but is not fatal alone.
	ErrAdapterFailure = errors.New("adapter failure")

	// ErrParse means the adapter returned unparseable structured output
	// where structure was required. Treated as ErrAdapterFailure by callers.
	ErrParse = errors.New("parse error")

	// ErrOrchestration covers a missing required sub-agent tool, an invalid
	// coordination file, or an aggregation that could not be computed.
	// Fatal to the current iteration; may become fatal to the run if the
	// same tool stays missing across retries.
	ErrOrchestration = errors.New("orchestration error")

	// ErrValidation means the evidence check returned failure. Not
	// immediately fatal: the loop either retries a bounded number of times
	// or transitions to Failed.
	ErrValidation = errors.New("validation failure")

	// ErrSafetyAbort means a SafetyGuard rule fired with action "abort".
	// Always fatal; terminal state is Aborted.
	ErrSafetyAbort = errors.New("safety abort")

	// ErrOperatorCancel means an external signal requested shutdown.
	// Always fatal; terminal state is Aborted.
	ErrOperatorCancel = errors.New("operator cancel")
)
