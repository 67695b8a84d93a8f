package aerr

import (
	"errors"
	"fmt"
	"log/slog"
)

type Errors struct {
	errs []AssayError
}

func (r *Errors) With(err ...AssayError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []AssayError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// Err returns nil when r holds no errors, or the joined errors otherwise
func (r *Errors) Err() error {
	if !r.HasError() {
		return nil
	}
	errs := make([]error, len(r.errs))
	for i, e := range r.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}

// As extracts the AssayError inside err, if any
func As(err error) (AssayError, bool) {
	var assayErr AssayError
	if errors.As(err, &assayErr) {
		return assayErr, true
	}
	return nil, false
}

// IsResolution reports whether err is a name resolution failure
func IsResolution(err error) bool {
	e, ok := As(err)
	return ok && (e.Code() == NotFound || e.Code() == Ambiguous)
}
