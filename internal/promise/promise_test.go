package promise

import (
	"errors"
	"testing"
	"time"
)

func TestFuture_CallbacksBeforeSettle(t *testing.T) {
	f, resolve, _ := NewFuture()
	var got any
	f.Then(func(v any) { got = v }, func(err error) { t.Fatalf("unexpected rejection: %v", err) })
	resolve("value")
	if got != "value" {
		t.Fatalf("want value, got %v", got)
	}
}

func TestFuture_CallbacksAfterSettle(t *testing.T) {
	f, _, reject := NewFuture()
	reject(errors.New("nope"))
	var got error
	f.Then(func(any) { t.Fatal("unexpected fulfillment") }, func(err error) { got = err })
	if got == nil || got.Error() != "nope" {
		t.Fatalf("want nope, got %v", got)
	}
}

func TestFuture_FirstSettlementWins(t *testing.T) {
	f, resolve, reject := NewFuture()
	resolve(1)
	reject(errors.New("late"))
	resolve(2)
	v, err := Default.Wait(f)
	if err != nil || v != 1 {
		t.Fatalf("want 1, got %v %v", v, err)
	}
}

func TestGo_SettlesFromGoroutine(t *testing.T) {
	f := Go(func() (any, error) {
		time.Sleep(time.Millisecond)
		return 7, nil
	})
	v, err := Default.Wait(f)
	if err != nil || v != 7 {
		t.Fatalf("want 7, got %v %v", v, err)
	}
}

func TestDefaultAdapter_RecognizesThenables(t *testing.T) {
	f, _, _ := NewFuture()
	if !Default.IsThenable(f) {
		t.Fatal("future must be thenable")
	}
	if Default.IsThenable("plain") || Default.IsThenable(nil) {
		t.Fatal("plain values must not be thenable")
	}
	if v, err := Default.Wait(Default.Resolved("x")); err != nil || v != "x" {
		t.Fatalf("resolved: got %v %v", v, err)
	}
	if _, err := Default.Wait(Default.Rejected(errors.New("bad"))); err == nil {
		t.Fatal("rejected: want error")
	}
}

func TestDeferred_SynchronousCallbacks(t *testing.T) {
	d := NewDeferred()
	order := []string{}
	d.Then(func(v any) { order = append(order, "first") }, nil)
	d.Then(func(v any) { order = append(order, "second") }, nil)
	d.Resolve(nil)
	d.Then(func(v any) { order = append(order, "late") }, nil)
	want := []string{"first", "second", "late"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("want %v, got %v", want, order)
		}
	}
}

func TestDeferred_RejectRunsOnlyRejectionCallbacks(t *testing.T) {
	d := NewDeferred()
	var got error
	d.Then(func(any) { t.Fatal("unexpected fulfillment") }, func(err error) { got = err })
	d.Reject(errors.New("down"))
	if got == nil || got.Error() != "down" {
		t.Fatalf("want down, got %v", got)
	}
}
