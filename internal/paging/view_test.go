package paging

import (
	"errors"
	"testing"

	"github.com/abelbrown/hnreader/internal/store"
)

func TestViewStartIssuesRefresh(t *testing.T) {
	v := NewView(30, 5)

	kind, ok := v.Start()
	if !ok || kind != Refresh {
		t.Fatalf("Start = %v, %v; want refresh, true", kind, ok)
	}
	if !v.Loading() {
		t.Error("expected Loading after Start")
	}
	if v.Placeholders() != 30 {
		t.Errorf("Placeholders = %d, want 30", v.Placeholders())
	}

	// Only one load at a time.
	if _, ok := v.Start(); ok {
		t.Error("second Start issued while in flight")
	}
	if _, ok := v.Scrolled(0); ok {
		t.Error("Scrolled issued while in flight")
	}

	v.Finished(Result{Status: MoreAvailable}, 30)
	if v.Loading() || v.Placeholders() != 0 || v.Count() != 30 {
		t.Errorf("after finish: loading=%v placeholders=%d count=%d", v.Loading(), v.Placeholders(), v.Count())
	}
}

func TestViewScrolledTriggersAppendNearEnd(t *testing.T) {
	v := NewView(30, 5)
	v.Start()
	v.Finished(Result{Status: MoreAvailable}, 30)

	tests := []struct {
		cursor int
		want   bool
	}{
		{0, false},
		{24, false},
		{25, true},
	}
	for _, tt := range tests {
		kind, ok := v.Scrolled(tt.cursor)
		if ok != tt.want {
			t.Errorf("Scrolled(%d) ok = %v, want %v", tt.cursor, ok, tt.want)
		}
		if ok && kind != Append {
			t.Errorf("Scrolled(%d) kind = %v, want append", tt.cursor, kind)
		}
	}
}

func TestViewEndOfDataStopsAppends(t *testing.T) {
	v := NewView(2, 0)
	v.Start()
	v.Finished(Result{Status: MoreAvailable}, 2)

	if _, ok := v.Scrolled(1); ok {
		t.Error("append issued before reaching the last row")
	}
	kind, ok := v.Scrolled(2)
	if !ok || kind != Append {
		t.Fatalf("Scrolled(2) = %v, %v; want append", kind, ok)
	}
	v.Finished(Result{Status: EndOfData}, 2)

	if !v.EndReached() {
		t.Error("expected EndReached")
	}
	if _, ok := v.Scrolled(2); ok {
		t.Error("append issued after end of data")
	}

	// Refresh resets the end state.
	if _, ok := v.Start(); !ok {
		t.Fatal("Start refused after end of data")
	}
	if v.EndReached() {
		t.Error("EndReached survived refresh")
	}
}

func TestViewPrependOnce(t *testing.T) {
	v := NewView(10, 2)
	v.Start()
	v.Finished(Result{Status: MoreAvailable}, 10)

	kind, ok := v.Scrolled(-1)
	if !ok || kind != Prepend {
		t.Fatalf("Scrolled(-1) = %v, %v; want prepend", kind, ok)
	}
	if v.Placeholders() != 0 {
		t.Errorf("Placeholders during prepend = %d, want 0", v.Placeholders())
	}
	v.Finished(Result{Status: EndOfData}, 10)

	if v.EndReached() {
		t.Error("prepend end of data marked the tail as reached")
	}
	if _, ok := v.Scrolled(-1); ok {
		t.Error("prepend issued again after start reached")
	}
	if kind, ok := v.Scrolled(9); !ok || kind != Append {
		t.Errorf("Scrolled(9) = %v, %v; want append", kind, ok)
	}
}

func TestViewErrorIsDismissableAndNotRetried(t *testing.T) {
	v := NewView(10, 2)
	v.Start()
	v.Finished(Result{Status: MoreAvailable}, 10)
	v.Scrolled(9)

	errNet := errors.New("connection refused")
	v.Finished(Result{Status: Failed, Err: errNet}, 10)

	if !errors.Is(v.Err(), errNet) {
		t.Fatalf("Err = %v, want %v", v.Err(), errNet)
	}
	if v.Fatal() {
		t.Error("network error marked fatal")
	}
	if _, ok := v.Scrolled(9); ok {
		t.Error("load issued while error banner is up")
	}

	kind, ok := v.Retry()
	if !ok || kind != Append {
		t.Fatalf("Retry = %v, %v; want append", kind, ok)
	}
	if v.Err() != nil {
		t.Error("Retry did not clear the error")
	}
	v.Finished(Result{Status: Failed, Err: errNet}, 10)

	v.Dismiss()
	if v.Err() != nil {
		t.Error("Dismiss did not clear the error")
	}
	if _, ok := v.Retry(); ok {
		t.Error("Retry issued without an error")
	}
	if kind, ok := v.Scrolled(9); !ok || kind != Append {
		t.Errorf("Scrolled after dismiss = %v, %v; want append", kind, ok)
	}
}

func TestViewFatalErrorStopsLoads(t *testing.T) {
	v := NewView(10, 2)
	v.Start()

	storeErr := &store.Error{Op: "refresh stories", Err: errors.New("disk I/O error")}
	v.Finished(Result{Status: Failed, Err: storeErr}, 0)

	if !v.Fatal() {
		t.Fatal("store error not marked fatal")
	}
	if _, ok := v.Retry(); ok {
		t.Error("Retry allowed after fatal error")
	}
	v.Dismiss()
	if _, ok := v.Start(); ok {
		t.Error("Start allowed after fatal error")
	}
	if _, ok := v.Scrolled(0); ok {
		t.Error("Scrolled issued after fatal error")
	}
}

func TestViewDefaults(t *testing.T) {
	v := NewView(0, -3)
	v.Start()
	if v.Placeholders() != defaultPageSize {
		t.Errorf("Placeholders = %d, want %d", v.Placeholders(), defaultPageSize)
	}
}
