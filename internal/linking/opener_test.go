package linking_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"lockfit/internal/linking"
	"lockfit/internal/protocol/deeplink/deeplinktest"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	if err := (linking.Printer{W: &buf}).Open(context.Background(), "phantom://v1/connect?x=1"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if buf.String() != "phantom://v1/connect?x=1\n" {
		t.Fatalf("printed %q", buf.String())
	}
}

func TestFallback_UsesSecondaryOnFailure(t *testing.T) {
	primary := &deeplinktest.Recorder{Err: errors.New("no display")}
	secondary := &deeplinktest.Recorder{}
	f := linking.Fallback{Primary: primary, Secondary: secondary}

	if err := f.Open(context.Background(), "phantom://v1/connect"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if secondary.Last() != "phantom://v1/connect" {
		t.Fatal("secondary not used")
	}
}

func TestNew_UnknownMode(t *testing.T) {
	if _, err := linking.New("carrier-pigeon", nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := linking.New("print", &bytes.Buffer{}); err != nil {
		t.Fatalf("print: %v", err)
	}
}
