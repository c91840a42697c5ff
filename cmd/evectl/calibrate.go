package main

import (
	"context"
	"errors"
	"fmt"

	"evehal/internal/config"
	"evehal/internal/eve"
	appLog "evehal/internal/log"
)

var errCalibrationFailed = errors.New("evectl: touch calibration failed")

// calibrate runs the coprocessor's three point calibration and stores the
// resulting transform in cfg. The caller saves the config.
func calibrate(ctx context.Context, e *eve.Engine, cfg *config.Config) error {
	w, h := cfg.Display.HSize, cfg.Display.VSize

	e.CmdDLStart()
	e.CmdDL(eve.ClearColorRGB(0), eve.Clear(true, true, true))
	e.CmdText(int16(w/2), int16(h/2), 28, eve.OPT_CENTER, "Tap the dots")
	if err := e.Err(); err != nil {
		return err
	}

	res, err := e.CmdCalibrate(ctx)
	if err != nil {
		return fmt.Errorf("evectl: calibrate: %w", err)
	}
	if res == 0 {
		return errCalibrationFailed
	}

	m := e.TouchTransform()
	cfg.SetTouchTransform(m)
	appLog.Info("touch calibrated", "transform", fmt.Sprintf("%08X", m))
	return e.Err()
}
