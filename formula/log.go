package formula

import (
	"log/slog"

	"github.com/cottand/assay/heap"
)

// Slog wraps a handle as a slog.LogValuer so that it is only rendered
// when the record is actually emitted
func Slog(a *Algebra, h heap.Handle) slog.LogValuer {
	return handleLogValuer{alg: a, handle: h}
}

type handleLogValuer struct {
	alg    *Algebra
	handle heap.Handle
}

func (l handleLogValuer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("handle", int(l.handle)),
		slog.String("str", l.alg.String(l.handle)),
	)
}

// SlogAll is Slog for a list of handles
func SlogAll(a *Algebra, hs []heap.Handle) slog.LogValuer {
	return handlesLogValuer{alg: a, handles: hs}
}

type handlesLogValuer struct {
	alg     *Algebra
	handles []heap.Handle
}

func (l handlesLogValuer) LogValue() slog.Value {
	strs := make([]string, len(l.handles))
	for i, h := range l.handles {
		strs[i] = l.alg.String(h)
	}
	return slog.AnyValue(strs)
}
