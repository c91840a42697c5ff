package eve

import (
	"context"
	"time"
)

var touchTransformRegs = [6]uint32{
	REG_TOUCH_TRANSFORM_A,
	REG_TOUCH_TRANSFORM_B,
	REG_TOUCH_TRANSFORM_C,
	REG_TOUCH_TRANSFORM_D,
	REG_TOUCH_TRANSFORM_E,
	REG_TOUCH_TRANSFORM_F,
}

// TouchTransform returns the six touch calibration coefficients, as left by
// CmdCalibrate.
func (e *Engine) TouchTransform() [6]uint32 {
	var m [6]uint32
	for i, reg := range touchTransformRegs {
		m[i] = e.Read32(reg)
	}
	return m
}

// SetTouchTransform restores previously stored calibration coefficients.
func (e *Engine) SetTouchTransform(m [6]uint32) {
	for i, reg := range touchTransformRegs {
		e.Write32(reg, m[i])
	}
}

// noTouch is the REG_TOUCH_SCREEN_XY value while the screen is not touched.
const noTouch uint32 = 0x80008000

// Touch returns the tag under the current touch point and its screen
// coordinates. ok is false when the screen is not touched.
func (e *Engine) Touch() (tag uint8, x, y int16, ok bool) {
	xy := e.Read32(REG_TOUCH_SCREEN_XY)
	if xy == noTouch {
		return 0, 0, 0, false
	}
	tag = e.Read8(REG_TOUCH_TAG)
	return tag, int16(xy >> 16), int16(xy), true
}

// SetBacklight sets the backlight PWM duty, 0 (off) to 128 (full).
func (e *Engine) SetBacklight(duty uint8) {
	e.Write8(REG_PWM_DUTY, min(duty, 128))
}

// Standby stops the system clock. Register contents are kept.
func (e *Engine) Standby() {
	e.HostCommand(HOST_STANDBY, 0)
}

// Wake leaves standby or sleep and waits for the clock to settle.
func (e *Engine) Wake(ctx context.Context) error {
	e.HostCommand(HOST_ACTIVE, 0)
	e.clk.Sleep(20 * time.Millisecond)
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.err
}
