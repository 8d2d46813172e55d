package usync

import (
	"strings"

	"github.com/tredeske/usshagent/ulog"
)

//
// Ignore any panics.  Prefer IgnorePanicIn instead.
//
// Use: defer usync.IgnorePanic()
//
func IgnorePanic() {
	recover()
}

//
// Ignore any panics in activity().
//
func IgnorePanicIn(activity func()) {
	defer func() { recover() }()
	activity()
}

//
// Capture any panics in activity().
//
func CapturePanicIn(activity func()) (captured interface{}) {
	defer func() { captured = recover() }()
	activity()
	return
}

//
// Log any panics.
//
// Use: defer usync.LogPanic("msg")
//
func LogPanic(msg string) {
	if it := recover(); it != nil {
		if 0 != len(msg) {
			ulog.Printf("PANIC: %s: %s", msg, it)
		} else {
			ulog.Printf("PANIC: %s", it)
		}
	}
}

//
// Log any panics in activity().
//
func LogPanicIn(msg string, activity func()) {
	defer func() {
		if it := recover(); it != nil {
			if 0 != len(msg) {
				ulog.Printf("PANIC: %s: %s", msg, it)
			} else {
				ulog.Printf("PANIC: %s", it)
			}
		}
	}()
	activity()
}

//
// Log any panics and exit the program.
//
// Use: defer usync.FatalPanic("msg")
//
func FatalPanic(msg string) {
	if it := recover(); it != nil {
		if 0 != len(msg) {
			ulog.Fatalf("PANIC: %s: %s", msg, it)
		} else {
			ulog.Fatalf("PANIC: %s", it)
		}
	}
}

// IgnoreClosedChanPanic reports whether recovered came from sending on or
// closing an already-closed channel, re-panicking if it is anything else.
//
//	defer func() {
//		if !usync.IgnoreClosedChanPanic(recover()) {
//			// no panic occurred
//		}
//	}()
func IgnoreClosedChanPanic(recovered any) (ignored bool) {
	if nil != recovered {
		if e, ok := recovered.(error); !ok ||
			-1 == strings.Index(e.Error(), "closed channel") {
			panic(recovered)
		}
		ignored = true
	}
	return
}

// BareIgnoreClosedChanPanic is usync.IgnoreClosedChanPanic for direct use
// with defer (no wrapping func needed).
//
//	defer usync.BareIgnoreClosedChanPanic()
func BareIgnoreClosedChanPanic() {
	IgnoreClosedChanPanic(recover())
}
