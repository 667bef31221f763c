package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// State is the terminal state of a Load call.
type State string

const (
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// LoadResult summarizes one Load call. Skipped counts rows ignored by the
// conflict clause. After a rollback Inserted reports what had been sent
// before the failure, none of which is persisted.
type LoadResult struct {
	Submitted int64
	Inserted  int64
	Skipped   int64
	Pages     int64
	State     State
}

// Stage is the step of the load lifecycle where an error happened.
type Stage string

const (
	StageConnect Stage = "connect"
	StageBegin   Stage = "begin"
	StageInsert  Stage = "insert"
	StageCommit  Stage = "commit"
)

// ErrorKind is a coarse classification of a driver error.
type ErrorKind string

const (
	KindConnection ErrorKind = "connection"
	KindConstraint ErrorKind = "constraint"
	KindData       ErrorKind = "data"
	KindSchema     ErrorKind = "schema"
	KindCanceled   ErrorKind = "canceled"
	KindOther      ErrorKind = "other"
)

// LoadError is returned by Repository.Load and by backend factories when the
// connection cannot be established. Page is 1-based and zero outside the
// insert stage.
type LoadError struct {
	Stage Stage
	Kind  ErrorKind
	Page  int64
	Err   error
}

func (e *LoadError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s (%s, page %d): %v", e.Stage, e.Kind, e.Page, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Classifier maps a driver error to an ErrorKind. Backends return KindOther
// for anything they do not recognise.
type Classifier func(error) ErrorKind

// Classify applies the checks common to every driver and falls back to the
// backend classifier.
func Classify(err error, backend Classifier) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	if backend != nil {
		if k := backend(err); k != KindOther {
			return k
		}
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, driver.ErrBadConn) {
		return KindConnection
	}
	return KindOther
}

// NewLoadError wraps err with its stage and classification.
func NewLoadError(stage Stage, page int64, err error, classify Classifier) *LoadError {
	return &LoadError{Stage: stage, Kind: Classify(err, classify), Page: page, Err: err}
}
