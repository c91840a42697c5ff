package eve

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrFlashStatusInit  = errors.New("eve: flash stuck in FLASH_STATUS_INIT")
	ErrFlashNotDetected = errors.New("eve: no flash detected")
	ErrFlashNoDevice    = errors.New("eve: flash: device not supported")
	ErrFlashBlobMissing = errors.New("eve: flash: no blob header found")
	ErrFlashBlobInvalid = errors.New("eve: flash: blob invalid or sector 0 read failed")
	ErrFlashSampling    = errors.New("eve: flash: high speed sampling failed")
	ErrFlashStatus      = errors.New("eve: flash: unexpected status")
)

const flashInitTries = 100

// flashFastErrors maps CMD_FLASHFAST result codes to errors.
var flashFastErrors = map[uint32]error{
	0xE001: ErrFlashNoDevice,
	0xE002: ErrFlashBlobMissing,
	0xE003: ErrFlashBlobInvalid,
	0xE004: ErrFlashBlobInvalid,
	0xE005: ErrFlashSampling,
}

// FlashStatus reads REG_FLASH_STATUS.
func (e *Engine) FlashStatus() uint8 {
	return e.Read8(REG_FLASH_STATUS)
}

// InitFlash brings an attached SPI flash to FLASH_STATUS_FULL (BT81x only).
// A detached flash is attached once before giving up.
func (e *Engine) InitFlash(ctx context.Context) error {
	if err := e.mustGen(Gen3, "flash"); err != nil {
		return err
	}
	status := e.FlashStatus()
	for tries := 0; status == FLASH_STATUS_INIT; tries++ {
		if tries >= flashInitTries {
			return ErrFlashStatusInit
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		e.clk.Sleep(time.Millisecond)
		status = e.FlashStatus()
	}

	if status == FLASH_STATUS_DETACHED {
		if err := e.CmdFlashAttach(ctx); err != nil {
			return err
		}
		status = e.FlashStatus()
		if status != FLASH_STATUS_BASIC {
			return ErrFlashNotDetected
		}
	}

	switch status {
	case FLASH_STATUS_BASIC:
		res, err := e.CmdFlashFast(ctx)
		if err != nil {
			return err
		}
		if res == 0 {
			e.debug("eve: flash in full speed mode")
			return nil
		}
		if ferr, ok := flashFastErrors[res]; ok {
			return ferr
		}
		return fmt.Errorf("%w: flashfast result 0x%04X", ErrFlashStatus, res)
	case FLASH_STATUS_FULL:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrFlashStatus, status)
	}
}
