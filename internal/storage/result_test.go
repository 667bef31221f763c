package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	dataErr := errors.New("bad value")
	backend := func(err error) ErrorKind {
		if errors.Is(err, dataErr) {
			return KindData
		}
		return KindOther
	}

	assert.Equal(t, KindCanceled, Classify(fmt.Errorf("x: %w", context.Canceled), backend))
	assert.Equal(t, KindCanceled, Classify(context.DeadlineExceeded, nil))
	assert.Equal(t, KindData, Classify(fmt.Errorf("wrap: %w", dataErr), backend))
	assert.Equal(t, KindConnection, Classify(&net.OpError{Op: "dial", Err: errors.New("refused")}, backend))
	assert.Equal(t, KindOther, Classify(errors.New("?"), backend))
	assert.Equal(t, KindOther, Classify(nil, backend))
}

func TestLoadError_Message(t *testing.T) {
	t.Parallel()

	inner := errors.New("duplicate")
	e := &LoadError{Stage: StageInsert, Kind: KindConstraint, Page: 3, Err: inner}
	assert.Equal(t, "insert (constraint, page 3): duplicate", e.Error())
	assert.ErrorIs(t, e, inner)

	e = NewLoadError(StageConnect, 0, inner, nil)
	assert.Equal(t, "connect (other): duplicate", e.Error())
}

func TestClassify_BadConn(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindConnection, Classify(fmt.Errorf("exec: %w", driver.ErrBadConn), nil))
}
