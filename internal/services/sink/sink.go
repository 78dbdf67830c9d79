// Package sink provides append-only destinations for rendered snapshots.
package sink

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Sink accepts rendered blocks in order. Writes never overwrite earlier output.
type Sink interface {
	Write(block string) error
	Close() error
}

// Multi fans a block out to several sinks.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks; nil entries are skipped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write writes to every sink even if some fail and returns all failures combined.
func (m *Multi) Write(block string) error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Append(err, s.Write(block))
	}
	return errors.Wrap(err, "write snapshot")
}

// Close closes every sink.
func (m *Multi) Close() error {
	var err error
	for _, s := range m.sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
