// Package errlog is the default error sink for detached side effects.
package errlog

import "log"

type Sink struct{}

func NewSink() *Sink {
	return &Sink{}
}

func (Sink) Report(op string, err error) {
	log.Printf("detached %s failed: %v", op, err)
}
