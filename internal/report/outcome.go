package report

import (
	"errors"

	"rudderc/internal/action"
	"rudderc/internal/errs"
)

// Cleaner is an error that can flatten itself into display lines.
type Cleaner interface {
	CleanFormatList() []string
}

// Status is the outcome label of a structured report.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the result of one unit of work: records on success,
// a cleanable error on failure.
type Outcome struct {
	records []action.Result
	err     Cleaner
}

// Success wraps the records of a completed unit of work.
func Success(records ...action.Result) Outcome {
	if records == nil {
		records = []action.Result{}
	}
	return Outcome{records: records}
}

// Failure wraps the error of a failed unit of work.
func Failure(err Cleaner) Outcome {
	if err == nil {
		err = errs.NewList(errors.New("unknown failure"))
	}
	return Outcome{err: err}
}

// FromResult builds an Outcome from a conventional (records, error) pair.
func FromResult(records []action.Result, err error) Outcome {
	if err == nil {
		return Success(records...)
	}
	var c Cleaner
	if errors.As(err, &c) {
		return Failure(c)
	}
	return Failure(errs.NewList(err))
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool { return o.err != nil }

// Status returns the report status of the outcome.
func (o Outcome) Status() Status {
	if o.Failed() {
		return StatusFailure
	}
	return StatusSuccess
}

// Records returns the result records; empty for a failure.
func (o Outcome) Records() []action.Result {
	if o.Failed() || o.records == nil {
		return []action.Result{}
	}
	return o.records
}

// Errors returns the cleaned error lines; empty for a success.
func (o Outcome) Errors() []string {
	if !o.Failed() {
		return []string{}
	}
	lines := o.err.CleanFormatList()
	if lines == nil {
		return []string{}
	}
	return lines
}
