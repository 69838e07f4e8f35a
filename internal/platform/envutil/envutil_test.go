package envutil

import (
	"testing"
	"time"
)

func TestEnvReaders(t *testing.T) {
	t.Setenv("SS_INT", "12")
	t.Setenv("SS_BAD_INT", "twelve")
	t.Setenv("SS_BOOL", "on")
	t.Setenv("SS_SECONDS", "90")
	t.Setenv("SS_LIST", " http://a.test, ,http://b.test ")

	if got := Int("SS_INT", 1); got != 12 {
		t.Fatalf("Int: want=12 got=%d", got)
	}
	if got := Int("SS_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if !Bool("SS_BOOL", false) {
		t.Fatalf("Bool: want true")
	}
	if got := Seconds("SS_SECONDS", time.Second); got != 90*time.Second {
		t.Fatalf("Seconds: want=90s got=%s", got)
	}
	if got := Seconds("SS_MISSING", 5*time.Second); got != 5*time.Second {
		t.Fatalf("Seconds fallback: want=5s got=%s", got)
	}
	list := List("SS_LIST", nil)
	if len(list) != 2 || list[0] != "http://a.test" || list[1] != "http://b.test" {
		t.Fatalf("List: unexpected %v", list)
	}
	if got := String("SS_MISSING", "dflt", nil); got != "dflt" {
		t.Fatalf("String fallback: want=dflt got=%s", got)
	}
}
