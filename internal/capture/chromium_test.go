package capture

import (
	"context"
	"testing"
	"time"
)

func TestScreenshotNeedsURL(t *testing.T) {
	if _, err := Screenshot(context.Background(), Options{}); err == nil {
		t.Errorf("expected an error without URL")
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{URL: "http://127.0.0.1/"}
	if err := o.normalize(); err != nil {
		t.Fatal(err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("expected %dx%d, got %dx%d", DefaultWidth, DefaultHeight, o.Width, o.Height)
	}
	if o.Selector != DefaultSelector {
		t.Errorf("expected selector %q, got %q", DefaultSelector, o.Selector)
	}
	if o.Timeout != DefaultTimeoutSec*time.Second {
		t.Errorf("expected default timeout, got %v", o.Timeout)
	}
}
