package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"evehal/internal/eve"
	appLog "evehal/internal/log"
)

const (
	tagButton = 1
	tagToggle = 2
)

// probe prints what the chip reports about itself.
func probe(e *eve.Engine, w io.Writer) error {
	fmt.Fprintf(w, "chip id:    0x%08X\n", e.ChipID())
	fmt.Fprintf(w, "generation: %s\n", e.Generation())
	fmt.Fprintf(w, "frequency:  %d Hz\n", e.Read32(eve.REG_FREQUENCY))
	if e.Generation() >= eve.Gen3 {
		fmt.Fprintf(w, "flash:      %s\n", flashStatusName(e.FlashStatus()))
	}
	return e.Err()
}

// drawDemo builds a widget screen in one burst and swaps it in. A frame
// lost to a coprocessor fault is drawn again.
func drawDemo(ctx context.Context, e *eve.Engine, w, h uint16, pressed uint8, on bool) error {
	for attempt := 0; attempt < 3; attempt++ {
		e.BeginBurst()
		e.CmdDLStart()
		e.CmdDL(eve.ClearColorRGB(0x101828), eve.Clear(true, true, true))
		e.CmdGradient(0, 0, 0x101828, 0, int16(h), 0x304060)

		e.CmdText(int16(w/2), 30, 31, eve.OPT_CENTER, "EVE")
		if e.Generation() >= eve.Gen3 {
			e.CmdText(int16(w/2), 70, 27, eve.OPT_CENTER|eve.OPT_FORMAT, "%d fault recoveries", uint32(e.Recoveries()))
		} else {
			e.CmdText(int16(w/2), 70, 27, eve.OPT_CENTER, "fault recoveries:")
		}

		e.CmdFGColor(0x3060C0)
		opt := uint16(0)
		if pressed == tagButton {
			opt = eve.OPT_FLAT
		}
		e.CmdDL(eve.Tag(tagButton))
		e.CmdButton(20, int16(h)-80, 160, 50, 28, opt, "Press")

		state := uint16(0)
		if on {
			state = 0xFFFF
		}
		e.CmdDL(eve.Tag(tagToggle))
		e.CmdToggle(220, int16(h)-60, 80, 27, 0, state, "off\xffon")
		e.CmdDL(eve.TagMask(0))

		e.CmdGauge(int16(w)-110, int16(h/2), 90, 0, 10, 5, uint16(time.Now().Second()), 60)
		e.CmdProgress(20, 110, w-260, 16, 0, uint16(time.Now().Second()), 59)
		e.CmdNumber(20, 140, 28, 0, int32(e.Recoveries()))

		e.CmdDL(eve.TagMask(1), eve.Display())
		e.CmdSwap()
		e.EndBurst()

		if err := e.ExecuteAndWait(ctx); err != nil {
			return err
		}
		if !e.GetAndResetFaultState() {
			return nil
		}
		appLog.Warn("demo frame lost to a coprocessor fault, redrawing", "attempt", attempt+1)
	}
	return fmt.Errorf("evectl: demo frame faulted repeatedly")
}

// runDemo redraws the demo screen whenever the touched tag changes, until
// ctx is cancelled.
func runDemo(ctx context.Context, d *device) error {
	w, h := d.cfg.Display.HSize, d.cfg.Display.VSize
	var (
		last uint8
		on   bool
	)

	d.mu.Lock()
	err := drawDemo(ctx, d.e, w, h, 0, on)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		d.mu.Lock()
		tag, _, _, _ := d.e.Touch()
		if tag != last {
			if tag == tagToggle {
				on = !on
			}
			appLog.Debug("touch", "tag", tag)
			err = drawDemo(ctx, d.e, w, h, tag, on)
			last = tag
		}
		d.mu.Unlock()
		if err != nil {
			return err
		}
	}
}
