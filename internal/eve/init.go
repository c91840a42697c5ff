package eve

import (
	"context"
	"fmt"
	"time"
)

const (
	regIDTries = 400
	resetTries = 50
)

// Init powers the chip up and brings it to a running state: clock setup,
// panel timing, touch, audio muted, an empty display list swapped in, pixel
// clock and backlight on. It returns ErrRegIDTimeout when the chip never
// answers and ErrResetTimeout when its units stay in reset. Errors recorded
// before the power cycle are dropped.
func (e *Engine) Init(ctx context.Context) error {
	if e.burst {
		return ErrBurstActive
	}
	e.waitFlush()
	e.ClearErr()

	e.powerCycle()
	if e.opt.SoftReset {
		e.HostCommand(HOST_RST_PULSE, 0)
	}
	if e.opt.ExternalClock {
		e.HostCommand(HOST_CLKEXT, 0)
	} else {
		e.HostCommand(HOST_CLKINT, 0)
	}
	if e.opt.Generation > Gen2 {
		e.HostCommand(HOST_CLKSEL, clkselPLL)
	}
	e.HostCommand(HOST_ACTIVE, 0)
	e.clk.Sleep(40 * time.Millisecond)

	if err := e.waitRegID(ctx); err != nil {
		return err
	}
	if err := e.waitReset(ctx); err != nil {
		return err
	}
	e.debug("eve: chip up", "generation", e.opt.Generation.String())

	if e.opt.Generation > Gen2 {
		e.Write32(REG_FREQUENCY, bt81xFreq)
	}
	if e.opt.TouchGT911 {
		if err := e.useGT911(ctx); err != nil {
			return err
		}
	}

	e.Write8(REG_PWM_DUTY, 0)
	e.WriteDisplayParameters()

	e.Write8(REG_VOL_PB, 0)
	e.Write8(REG_VOL_SOUND, 0)
	e.Write16(REG_SOUND, soundMute)

	e.Write32(RAM_DL, ClearColorRGB(0))
	e.Write32(RAM_DL+4, Clear(true, true, true))
	e.Write32(RAM_DL+8, Display())
	e.Write32(REG_DLSWAP, uint32(DLSWAP_FRAME))

	d := e.opt.Display
	if d.OutBits != 0 {
		e.Write16(REG_OUTBITS, d.OutBits)
	}
	e.Write8(REG_GPIO, 0x80)
	if e.opt.Generation >= Gen4 && d.PCLKFreq != 0 {
		e.Write16(REG_PCLK_FREQ, d.PCLKFreq)
		if d.PCLK2X {
			e.Write8(REG_PCLK_2X, 1)
		}
		e.Write8(REG_PCLK, 1)
	} else {
		e.Write8(REG_PCLK, d.PCLK)
	}

	if d.BacklightFreq != 0 {
		e.Write16(REG_PWM_HZ, d.BacklightFreq)
	}
	e.Write8(REG_PWM_DUTY, d.Backlight)

	e.clk.Sleep(time.Millisecond)
	if err := e.ExecuteAndWait(ctx); err != nil {
		return fmt.Errorf("eve: init: %w", err)
	}
	e.debug("eve: init done", "hsize", d.HSize, "vsize", d.VSize)
	return nil
}

// powerCycle pulses PD_N: at least 5ms low, then 20ms before the first access.
func (e *Engine) powerCycle() {
	e.setErr(e.t.PowerDown(true))
	e.clk.Sleep(6 * time.Millisecond)
	e.setErr(e.t.PowerDown(false))
	e.clk.Sleep(21 * time.Millisecond)
}

func (e *Engine) waitRegID(ctx context.Context) error {
	for i := 0; i < regIDTries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.clk.Sleep(time.Millisecond)
		if e.Read8(REG_ID) == regIDValue {
			return nil
		}
		if e.err != nil {
			return e.err
		}
	}
	return ErrRegIDTimeout
}

func (e *Engine) waitReset(ctx context.Context) error {
	for i := 0; i < resetTries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.clk.Sleep(time.Millisecond)
		if e.Read8(REG_CPURESET)&7 == 0 {
			return nil
		}
		if e.err != nil {
			return e.err
		}
	}
	return ErrResetTimeout
}

// WriteDisplayParameters writes the panel timing, touch mode and rotation.
// Init calls it; it can be used again to refresh the registers.
func (e *Engine) WriteDisplayParameters() {
	d := e.opt.Display
	e.Write16(REG_HSIZE, d.HSize)
	e.Write16(REG_HCYCLE, d.HCycle)
	e.Write16(REG_HOFFSET, d.HOffset)
	e.Write16(REG_HSYNC0, d.HSync0)
	e.Write16(REG_HSYNC1, d.HSync1)
	e.Write16(REG_VSIZE, d.VSize)
	e.Write16(REG_VCYCLE, d.VCycle)
	e.Write16(REG_VOFFSET, d.VOffset)
	e.Write16(REG_VSYNC0, d.VSync0)
	e.Write16(REG_VSYNC1, d.VSync1)
	e.Write8(REG_SWIZZLE, d.Swizzle)
	e.Write8(REG_PCLK_POL, d.PCLKPol)
	e.Write8(REG_CSPREAD, d.CSpread)

	e.Write8(REG_TOUCH_MODE, TMODE_CONTINUOUS)
	e.Write16(REG_TOUCH_RZTHRESH, d.TouchRZThresh)
	if d.Rotate != nil {
		e.Write8(REG_ROTATE, *d.Rotate&7)
	}
}

// useGT911 switches the touch engine to a Goodix GT911. FT81x needs the
// vendor patch streamed through the FIFO first and GPIO3 pulsed to reset the
// controller.
func (e *Engine) useGT911(ctx context.Context) error {
	if e.opt.Generation > Gen2 {
		e.Write16(REG_TOUCH_CONFIG, gt911TouchConfig)
		return nil
	}
	if len(e.opt.GT911Patch) == 0 {
		return fmt.Errorf("eve: gt911: FT81x needs the touch patch blob")
	}
	b := make([]byte, 0, len(cmdHeader)+len(e.opt.GT911Patch)+3)
	b = append(b, cmdHeader[:]...)
	b = append(b, e.opt.GT911Patch...)
	b = append(b, make([]byte, padding(len(e.opt.GT911Patch)))...)
	e.transaction(b, nil)
	if err := e.ExecuteAndWait(ctx); err != nil {
		return fmt.Errorf("eve: gt911 patch: %w", err)
	}

	e.Write8(REG_TOUCH_OVERSAMPLE, 0x0F)
	e.Write16(REG_TOUCH_CONFIG, gt911TouchConfig)
	// GPIO3 low resets the controller on Matrix Orbital EVE2 modules
	e.Write16(REG_GPIOX_DIR, 0x8008)
	e.clk.Sleep(time.Millisecond)
	e.Write8(REG_CPURESET, 0)
	e.clk.Sleep(110 * time.Millisecond)
	e.Write16(REG_GPIOX_DIR, 0x8000)
	return e.err
}
