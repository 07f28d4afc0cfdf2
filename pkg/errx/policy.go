package errx

import (
	"errors"
)

// Policy holds the per-operation wording applied to upstream failures.
//
// Overrides are keyed by upstream status; Fallback is used when neither an
// override nor the upstream body yields a description.
type Policy struct {
	Name      string
	Fallback  string
	Overrides map[int]string
}

// Override returns the override for status, if one is set.
func (p *Policy) Override(status int) (string, bool) {
	if p == nil || p.Overrides == nil {
		return "", false
	}
	msg, ok := p.Overrides[status]
	return msg, ok
}

// WithPolicy attaches p to err. The first policy attached wins so an outer
// operation cannot clobber the wording chosen by the operation that failed.
// Non *Error values are wrapped as unexpected.
func WithPolicy(err error, p *Policy) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		e = Unexpected(err)
	}
	if e.policy != nil {
		return e
	}
	cp := *e
	cp.policy = p
	return &cp
}
