package scope

import "testing"

func TestNoGuard(t *testing.T) {
	var g Guard = NoGuard{}
	if !g.Acquire("/anywhere") {
		t.Fatal("expected NoGuard to always grant access")
	}
	g.Release("/anywhere") // no-op, must not panic
}

func TestFuncGuardDefaults(t *testing.T) {
	var g Guard = FuncGuard{}
	if !g.Acquire("/x") {
		t.Fatal("expected nil AcquireFn to grant access")
	}
	g.Release("/x") // nil ReleaseFn is a no-op
}

func TestFuncGuardForwards(t *testing.T) {
	var acquired, released string
	g := FuncGuard{
		AcquireFn: func(p string) bool { acquired = p; return false },
		ReleaseFn: func(p string) { released = p },
	}
	if g.Acquire("/a") {
		t.Fatal("expected denial forwarded")
	}
	g.Release("/b")
	if acquired != "/a" || released != "/b" {
		t.Fatalf("expected callbacks invoked, got %q %q", acquired, released)
	}
}
