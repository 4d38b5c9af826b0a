package diag

import "surge/internal/source"

// OrElse is an on-demand diagnostic constructor attached to a recorded
// constraint (a bound, a predicate requirement). It is cheap to carry
// around — the Diagnostic is only built when a contradiction actually
// needs explaining, mirroring how Fix.Thunk defers building edits until
// a diagnostic is materialized.
type OrElse struct {
	span source.Span
	build func() Diagnostic
}

// NewOrElse wraps a diagnostic-construction closure. span is used as the
// fallback primary span if build returns a Diagnostic with a zero span.
func NewOrElse(span source.Span, build func() Diagnostic) OrElse {
	return OrElse{span: span, build: build}
}

// Simple constructs an OrElse that always reports the same fixed message.
func Simple(span source.Span, code Code, msg string) OrElse {
	return OrElse{
		span: span,
		build: func() Diagnostic {
			return Diagnostic{Severity: SevError, Code: code, Message: msg, Primary: span}
		},
	}
}

// IsZero reports whether the handle carries no constructor (a no-op site).
func (o OrElse) IsZero() bool {
	return o.build == nil
}

// Span returns the span this bound/requirement originated at, even before
// the full diagnostic is materialized.
func (o OrElse) Span() source.Span {
	return o.span
}

// Report materializes the diagnostic and, if non-nil, files it into bag.
func (o OrElse) Report(bag *Bag) Diagnostic {
	d := o.Diagnostic()
	if bag != nil {
		bag.Add(&d)
	}
	return d
}

// Diagnostic materializes the diagnostic without filing it anywhere.
func (o OrElse) Diagnostic() Diagnostic {
	if o.build == nil {
		return Diagnostic{Severity: SevError, Code: UnknownCode, Message: "unexplained constraint failure", Primary: o.span}
	}
	d := o.build()
	if d.Primary == (source.Span{}) {
		d.Primary = o.span
	}
	return d
}

// Pair merges two OrElse handles into a single diagnostic with the second's
// explanation attached as a note — used when a contradiction cites both the
// original requirement and the one that conflicts with it (§4.E, §7).
func Pair(primary, other OrElse) Diagnostic {
	d := primary.Diagnostic()
	note := other.Diagnostic()
	d.Notes = append(d.Notes, Note{Span: note.Primary, Msg: note.Message})
	return d
}
