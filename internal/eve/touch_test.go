package eve

import (
	"context"
	"testing"
	"time"
)

func TestTouchTransformRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	m := [6]uint32{0x10000, 0xFFFFFF00, 0x123, 0, 0xFFFF8000, 0x7FFFFFFF}

	e.SetTouchTransform(m)
	if got := e.TouchTransform(); got != m {
		t.Errorf("expected %X, got %X", m, got)
	}
}

func TestTouch(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{})
	chip.put16(REG_TOUCH_SCREEN_XY, 0x8000)
	chip.put16(REG_TOUCH_SCREEN_XY+2, 0x8000)

	if _, _, _, ok := e.Touch(); ok {
		t.Errorf("expected no touch")
	}

	chip.put16(REG_TOUCH_SCREEN_XY, 120)
	chip.put16(REG_TOUCH_SCREEN_XY+2, 300)
	chip.mem[REG_TOUCH_TAG] = 7
	tag, x, y, ok := e.Touch()
	if !ok || tag != 7 || x != 300 || y != 120 {
		t.Errorf("expected tag 7 at (300,120), got %d at (%d,%d) ok=%v", tag, x, y, ok)
	}
}

func TestBacklightClamp(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{})
	e.SetBacklight(200)
	if got := chip.mem[REG_PWM_DUTY]; got != 128 {
		t.Errorf("expected duty clamped to 128, got %d", got)
	}
}

func TestStandbyWake(t *testing.T) {
	e, chip, clk := newTestEngine(t, Options{})
	e.Standby()
	if err := e.Wake(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(chip.host) != 2 || chip.host[0][0] != HOST_STANDBY || chip.host[1][0] != HOST_ACTIVE {
		t.Errorf("unexpected host commands %v", chip.host)
	}
	if clk.total() != 20*time.Millisecond {
		t.Errorf("expected a 20ms settle, got %v", clk.total())
	}
}
