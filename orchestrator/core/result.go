package core

import (
	"errors"
	"fmt"
)

// SubmitOutcome classifies the result of a write to either chain.
type SubmitOutcome uint8

const (
	// Applied means the write changed chain state.
	Applied SubmitOutcome = iota + 1
	// AlreadyApplied means the goal was already reached by another validator
	// or by an earlier attempt of this process (duplicate, already executed).
	AlreadyApplied
	// Rejected means the receiving chain refused the write for a reason that
	// will not go away by resubmitting the same data.
	Rejected
	// TransientFailure covers RPC, timeout and signing failures.
	TransientFailure
)

func (o SubmitOutcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AlreadyApplied:
		return "already_applied"
	case Rejected:
		return "rejected"
	case TransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

var (
	ErrSubmitRejected  = errors.New("submission rejected")
	ErrSubmitTransient = errors.New("submission failed")
)

type SubmitResult struct {
	Outcome SubmitOutcome
	TxHash  string
	Reason  string
	Err     error
}

func AppliedResult(txHash string) SubmitResult {
	return SubmitResult{Outcome: Applied, TxHash: txHash}
}

func AlreadyAppliedResult(reason string) SubmitResult {
	return SubmitResult{Outcome: AlreadyApplied, Reason: reason}
}

func RejectedResult(reason string) SubmitResult {
	return SubmitResult{Outcome: Rejected, Reason: reason}
}

func TransientResult(err error) SubmitResult {
	return SubmitResult{Outcome: TransientFailure, Err: err}
}

// IsSuccess reports whether the caller's goal has been reached on chain.
func (r SubmitResult) IsSuccess() bool {
	return r.Outcome == Applied || r.Outcome == AlreadyApplied
}

// AsError converts a non-successful result into an error wrapping one of
// ErrSubmitRejected or ErrSubmitTransient. Successful results return nil.
func (r SubmitResult) AsError() error {
	switch r.Outcome {
	case Applied, AlreadyApplied:
		return nil
	case Rejected:
		return fmt.Errorf("%w: %s", ErrSubmitRejected, r.Reason)
	default:
		if r.Err == nil {
			return ErrSubmitTransient
		}

		return fmt.Errorf("%w: %w", ErrSubmitTransient, r.Err)
	}
}
