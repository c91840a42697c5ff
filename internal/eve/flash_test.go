package eve

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestInitFlash(t *testing.T) {
	tests := []struct {
		name     string
		status   []uint8
		fastCode uint32
		want     error
	}{
		{"basic", []uint8{FLASH_STATUS_BASIC}, 0, nil},
		{"full", []uint8{FLASH_STATUS_FULL}, 0, nil},
		{"late init", []uint8{FLASH_STATUS_INIT, FLASH_STATUS_INIT, FLASH_STATUS_BASIC}, 0, nil},
		{"attach", []uint8{FLASH_STATUS_DETACHED, FLASH_STATUS_BASIC}, 0, nil},
		{"attach fails", []uint8{FLASH_STATUS_DETACHED, FLASH_STATUS_DETACHED}, 0, ErrFlashNotDetected},
		{"no device", []uint8{FLASH_STATUS_BASIC}, 0xE001, ErrFlashNoDevice},
		{"no blob", []uint8{FLASH_STATUS_BASIC}, 0xE002, ErrFlashBlobMissing},
		{"sector 0", []uint8{FLASH_STATUS_BASIC}, 0xE003, ErrFlashBlobInvalid},
		{"blob mismatch", []uint8{FLASH_STATUS_BASIC}, 0xE004, ErrFlashBlobInvalid},
		{"speed test", []uint8{FLASH_STATUS_BASIC}, 0xE005, ErrFlashSampling},
		{"unknown code", []uint8{FLASH_STATUS_BASIC}, 0xE0FF, ErrFlashStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, chip, _ := newTestEngine(t, Options{Generation: Gen3})
			chip.flashStatus = tt.status
			chip.results[CMD_FLASHFAST] = func([]uint32) []uint32 { return []uint32{tt.fastCode} }

			err := e.InitFlash(context.Background())
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInitFlashStuckInInit(t *testing.T) {
	e, chip, clk := newTestEngine(t, Options{Generation: Gen3})
	// REG_FLASH_STATUS reads 0 (INIT) forever

	if err := e.InitFlash(context.Background()); !errors.Is(err, ErrFlashStatusInit) {
		t.Fatalf("expected ErrFlashStatusInit, got %v", err)
	}
	if n := chip.countReads(REG_FLASH_STATUS); n != flashInitTries+1 {
		t.Errorf("expected %d reads, got %d", flashInitTries+1, n)
	}
	if len(clk.sleeps) != flashInitTries {
		t.Errorf("expected %d 1ms steps, got %d", flashInitTries, len(clk.sleeps))
	}
}

func TestInitFlashAttachSendsCommand(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{Generation: Gen3})
	chip.flashStatus = []uint8{FLASH_STATUS_DETACHED, FLASH_STATUS_BASIC}

	if err := e.InitFlash(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, want := chip.fifo(), le32(CMD_FLASHATTACH, CMD_FLASHFAST, 0); !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}
}

func TestInitFlashNeedsBT81x(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{Generation: Gen2})
	if err := e.InitFlash(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if len(chip.txns) != 0 {
		t.Errorf("expected no bus traffic")
	}
}
