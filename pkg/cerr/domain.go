package cerr

import "fmt"

// Domain constructors for the failure modes of the interrupt pipeline. Every
// remote-call failure is converted to one of these at the boundary; none
// propagate as uncaught faults.

// NewFetchFailure marks a thread document that could not be fetched at all.
// Extraction of that thread is skipped; other threads continue.
func NewFetchFailure(threadID string, err error) *Error {
	return NewError(Unavailable, fmt.Sprintf("could not fetch thread %s", shortID(threadID)), err)
}

// NewDisallowedResponseType marks an operator decision that is not permitted
// for the record's action kind. No submission is attempted.
func NewDisallowedResponseType(responseType, kind string) *Error {
	return NewError(InvalidArgument,
		fmt.Sprintf("response type %q is not allowed for %s", responseType, kind), nil)
}

// NewMalformedOperatorInput marks operator input that failed validation at
// the current conversation step. The step is re-prompted, not advanced.
func NewMalformedOperatorInput(msg string, err error) *Error {
	return NewError(InvalidArgument, msg, err)
}

// NewSubmissionFailure marks a resume submission whose payload-format
// fallbacks are all exhausted. The record status is left unchanged.
func NewSubmissionFailure(threadID string, err error) *Error {
	return NewError(Unavailable,
		fmt.Sprintf("failed to submit response for thread %s", shortID(threadID)), err)
}

// NewOrphanedSession marks an inconsistent conversation session that could
// not be recovered.
func NewOrphanedSession(msg string) *Error {
	return NewError(FailedPrecondition, msg, nil)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
