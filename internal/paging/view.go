package paging

// View decides when the consumer should ask a mediator for more data.
// It holds no records; the consumer reports the backed row count and the
// outcome of each load it issued. View is not safe for concurrent use: it
// lives inside a UI update loop.
//
// At most one load is outstanding at a time. Failures are surfaced through
// Err until dismissed or retried; View never retries on its own.
type View struct {
	pageSize int
	prefetch int

	count        int
	inFlight     bool
	pending      LoadKind
	endReached   bool
	startReached bool

	err        error
	failedKind LoadKind
	fatal      bool
}

// NewView creates a View. prefetch is how close (in rows) the cursor may get
// to the last backed row before an append is requested.
func NewView(pageSize, prefetch int) *View {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if prefetch < 0 {
		prefetch = 0
	}
	return &View{pageSize: pageSize, prefetch: prefetch}
}

// Start requests a refresh. It is refused while a load is in flight or after
// a fatal error; otherwise it clears any previous error and end state.
func (v *View) Start() (LoadKind, bool) {
	if v.inFlight || v.fatal {
		return 0, false
	}
	v.err = nil
	v.endReached = false
	v.startReached = false
	return v.issue(Refresh), true
}

// Scrolled reports the cursor position and returns the load to issue, if
// any. A cursor above the first row asks for a prepend; a cursor within
// prefetch rows of the last backed row asks for an append.
func (v *View) Scrolled(cursor int) (LoadKind, bool) {
	if v.inFlight || v.fatal || v.err != nil {
		return 0, false
	}
	if cursor < 0 {
		if v.startReached {
			return 0, false
		}
		return v.issue(Prepend), true
	}
	if v.endReached {
		return 0, false
	}
	if cursor >= v.count-v.prefetch {
		return v.issue(Append), true
	}
	return 0, false
}

// Finished records the result of the outstanding load and the backed row
// count read after it.
func (v *View) Finished(res Result, count int) {
	kind := v.pending
	v.inFlight = false
	v.count = count

	switch res.Status {
	case EndOfData:
		if kind == Prepend {
			v.startReached = true
		} else {
			v.endReached = true
		}
	case Failed:
		v.err = res.Err
		v.failedKind = kind
		v.fatal = IsFatal(res.Err)
	}
}

// Retry re-issues the load that failed. Refused without a retryable error.
func (v *View) Retry() (LoadKind, bool) {
	if v.err == nil || v.fatal || v.inFlight {
		return 0, false
	}
	v.err = nil
	return v.issue(v.failedKind), true
}

// Dismiss clears the error banner. A fatal error still blocks further loads.
func (v *View) Dismiss() {
	v.err = nil
}

// Placeholders returns how many not-yet-backed rows to render after the
// backed rows: one page while a refresh or append is in flight.
func (v *View) Placeholders() int {
	if v.inFlight && v.pending != Prepend {
		return v.pageSize
	}
	return 0
}

func (v *View) issue(kind LoadKind) LoadKind {
	v.inFlight = true
	v.pending = kind
	return kind
}

// Count returns the backed row count.
func (v *View) Count() int { return v.count }

// Loading reports whether a load is outstanding.
func (v *View) Loading() bool { return v.inFlight }

// EndReached reports whether an append or refresh hit end of data.
func (v *View) EndReached() bool { return v.endReached }

// Err returns the undismissed error of the last load, if any.
func (v *View) Err() error { return v.err }

// Fatal reports whether a store failure ended the session's paging.
func (v *View) Fatal() bool { return v.fatal }
