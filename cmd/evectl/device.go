package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"evehal/internal/config"
	"evehal/internal/eve"
	appLog "evehal/internal/log"
	"evehal/internal/spibus"
	"evehal/internal/web"
)

// device owns the engine. Every chip access from the scheduler, the
// calibration path and the status updates goes through mu.
type device struct {
	mu  sync.Mutex
	e   *eve.Engine
	bus *spibus.Bus
	cfg *config.Config
}

// openDevice opens the SPI bus and brings the chip up.
func openDevice(ctx context.Context, cfg *config.Config) (*device, error) {
	bus, err := spibus.Open(spibus.Options{
		Device:  cfg.SPI.Device,
		SpeedHz: cfg.SPI.SpeedHz,
		CSPin:   cfg.SPI.CSPin,
		PDPin:   cfg.SPI.PDPin,
	})
	if err != nil {
		return nil, err
	}

	var patch []byte
	if cfg.Chip.GT911Patch != "" {
		patch, err = os.ReadFile(cfg.Chip.GT911Patch)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("evectl: read gt911 patch: %w", err)
		}
	}

	e, err := startEngine(ctx, bus, cfg, patch)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return &device{e: e, bus: bus, cfg: cfg}, nil
}

// startEngine runs the init sequence on t and restores the stored touch
// calibration.
func startEngine(ctx context.Context, t eve.Transport, cfg *config.Config, patch []byte) (*eve.Engine, error) {
	opt := cfg.EVEOptions(patch)
	opt.Log = appLog.Debug
	e := eve.New(t, opt)

	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	appLog.Info("chip initialized",
		"chip_id", fmt.Sprintf("0x%08X", e.ChipID()),
		"generation", e.Generation().String(),
		"size", fmt.Sprintf("%dx%d", cfg.Display.HSize, cfg.Display.VSize),
	)

	if m, ok := cfg.TouchTransform(); ok {
		e.SetTouchTransform(m)
	}
	if cfg.Chip.InitFlash {
		if err := e.InitFlash(ctx); err != nil {
			return nil, fmt.Errorf("evectl: flash: %w", err)
		}
		appLog.Info("flash ready", "status", flashStatusName(e.FlashStatus()))
	}
	return e, e.Err()
}

// Close blanks the backlight, puts the chip in standby and releases the bus.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.e.SetBacklight(0)
	d.e.Standby()
	return d.bus.Close()
}

// publish copies the chip state into the status API snapshot.
func (d *device) publish(srv *web.Server) {
	d.mu.Lock()
	id := d.e.ChipID()
	freq := d.e.Read32(eve.REG_FREQUENCY)
	rec := d.e.Recoveries()
	var flash string
	if d.e.Generation() >= eve.Gen3 {
		flash = flashStatusName(d.e.FlashStatus())
	}
	gen := d.e.Generation().String()
	d.mu.Unlock()

	srv.Update(func(st *web.Status) {
		st.ChipID = id
		st.Generation = gen
		st.Frequency = freq
		st.Recoveries = rec
		st.FlashStatus = flash
	})
}

func flashStatusName(s uint8) string {
	switch s {
	case eve.FLASH_STATUS_INIT:
		return "init"
	case eve.FLASH_STATUS_DETACHED:
		return "detached"
	case eve.FLASH_STATUS_BASIC:
		return "basic"
	case eve.FLASH_STATUS_FULL:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}
