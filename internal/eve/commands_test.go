package eve

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// drawScreen issues a display list touching every argument packing style.
func drawScreen(e *Engine) {
	e.CmdDLStart()
	e.CmdDL(ClearColorRGB(0x102030), Clear(true, true, true))
	e.CmdBGColor(0x00FF00)
	e.CmdText(240, 20, 28, OPT_CENTER, "Hello, EVE")
	e.CmdText(10, 60, 26, OPT_FORMAT, "%d frames", 42)
	e.CmdText(10, 80, 26, 0, "ignored args", 1, 2)
	e.CmdButton(10, 100, 120, 40, 27, 0, "OK")
	e.CmdToggle(200, 100, 60, 27, 0, 0xFFFF, "on\xffoff")
	e.CmdKeys(10, 150, 300, 40, 28, 0, "12345")
	e.CmdNumber(-5, -7, 28, OPT_SIGNED, -1234)
	e.CmdGauge(400, 150, 60, 0, 10, 5, 30, 100)
	e.CmdClock(400, 50, 40, OPT_NOSECS, 10, 15, 0, 0)
	e.CmdProgress(10, 200, 200, 10, 0, 50, 100)
	e.CmdSlider(10, 220, 200, 10, 0, 25, 100)
	e.CmdScrollbar(10, 240, 200, 10, 0, 10, 20, 100)
	e.CmdGradient(0, 0, 0x0000FF, 479, 271, 0xFF0000)
	e.CmdSpinner(240, 136, 0, 1)
	e.CmdLoadIdentity()
	e.CmdScale(2<<16, 2<<16)
	e.CmdRotate(0x4000)
	e.CmdSetMatrix()
	e.CmdSetBitmap(RAM_G, uint16(RGB565), 64, 32)
	e.CmdDL(Begin(BITMAPS), Vertex2F(16*20, 16*20), End())
	e.CmdDL(Display())
	e.CmdSwap()
}

func TestBurstMatchesImmediate(t *testing.T) {
	imm, immChip, _ := newTestEngine(t, Options{})
	drawScreen(imm)
	if err := imm.Err(); err != nil {
		t.Fatalf("immediate: %v", err)
	}

	burst, burstChip, _ := newTestEngine(t, Options{})
	burst.BeginBurst()
	drawScreen(burst)
	burst.EndBurst()
	if err := burst.Err(); err != nil {
		t.Fatalf("burst: %v", err)
	}

	buffered, bufChip, _ := newTestEngine(t, Options{BufferedBurst: true})
	buffered.BeginBurst()
	drawScreen(buffered)
	buffered.EndBurst()
	if err := buffered.ExecuteAndWait(context.Background()); err != nil {
		t.Fatalf("buffered: %v", err)
	}

	want := immChip.fifo()
	if len(want)%4 != 0 {
		t.Fatalf("FIFO stream not word aligned: %d bytes", len(want))
	}
	if got := burstChip.fifo(); !bytes.Equal(got, want) {
		t.Errorf("burst stream differs from immediate stream:\n% X\n% X", got, want)
	}
	if got := bufChip.fifo(); !bytes.Equal(got, want) {
		t.Errorf("buffered burst stream differs from immediate stream")
	}

	fifoTxns := func(c *fakeChip) int {
		n := 0
		for _, tx := range c.txns {
			if !tx.read && tx.addr() == REG_CMDB_WRITE {
				n++
			}
		}
		return n
	}
	if n := fifoTxns(burstChip); n != 1 {
		t.Errorf("expected one burst transaction, got %d", n)
	}
	if n := fifoTxns(bufChip); n != 1 {
		t.Errorf("expected one buffered transaction, got %d", n)
	}
	if n := fifoTxns(immChip); n < 20 {
		t.Errorf("expected one transaction per command, got %d", n)
	}
}

func TestTextLayout(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{})
	e.CmdText(-1, 2, 31, OPT_FORMAT|OPT_CENTERX, "v=%d", 7)

	want := le32(CMD_TEXT, 0x0002FFFF, uint32(OPT_FORMAT|OPT_CENTERX)<<16|31)
	want = append(want, 'v', '=', '%', 'd', 0, 0, 0, 0)
	want = append(want, le32(7)...)
	if got := chip.fifo(); !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}
}

func TestManualCommandMatchesTyped(t *testing.T) {
	typed, typedChip, _ := newTestEngine(t, Options{})
	typed.CmdButton(1, 2, 3, 4, 5, 6, "go")

	manual, manualChip, _ := newTestEngine(t, Options{})
	if err := manual.BeginCommand(CMD_BUTTON); err != nil {
		t.Fatal(err)
	}
	manual.WriteWord(1 | 2<<16)
	manual.WriteWord(3 | 4<<16)
	manual.WriteWord(5 | 6<<16)
	manual.WriteString("go")
	manual.EndCommand()

	if err := manual.Err(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(manualChip.fifo(), typedChip.fifo()) {
		t.Errorf("expected % X, got % X", typedChip.fifo(), manualChip.fifo())
	}
	if len(manualChip.txns) != 1 {
		t.Errorf("expected the manual command in one transaction, got %d", len(manualChip.txns))
	}
}

func TestListCommandGenerationGate(t *testing.T) {
	e, chip, _ := newTestEngine(t, Options{Generation: Gen2})
	e.CmdFillWidth(100)
	e.CmdAnimDraw(0)

	if !errors.Is(e.Err(), ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", e.Err())
	}
	if len(chip.txns) != 0 {
		t.Errorf("expected nothing sent, got %d transactions", len(chip.txns))
	}

	e4, chip4, _ := newTestEngine(t, Options{Generation: Gen4})
	e4.CmdFillWidth(100)
	e4.CmdCallList(RAM_G)
	if err := e4.Err(); err != nil {
		t.Errorf("unexpected error on BT817: %v", err)
	}
	if got, want := chip4.fifo(), le32(CMD_FILLWIDTH, 100, CMD_CALLLIST, RAM_G); !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}
}

func TestCommandTable(t *testing.T) {
	for op, ci := range cmdTable {
		if op&0xFFFFFF00 != 0xFFFFFF00 {
			t.Errorf("%s: opcode 0x%08X outside the coprocessor range", ci.name, op)
		}
		if ci.gen < Gen2 || ci.gen > Gen4 {
			t.Errorf("%s: bad generation %d", ci.name, ci.gen)
		}
		if ci.results > 0 && ci.kind == kindStart {
			t.Errorf("%s: a command that does not wait cannot return results", ci.name)
		}
	}
	if got := CommandName(CMD_SWAP); got != "CMD_SWAP" {
		t.Errorf("expected CMD_SWAP, got %s", got)
	}
	if got := CommandName(0x12345678); got != "0x12345678" {
		t.Errorf("expected hex fallback, got %s", got)
	}
}

func TestCommandGeneric(t *testing.T) {
	ctx := context.Background()
	e, chip, _ := newTestEngine(t, Options{})

	if _, err := e.Command(ctx, CMD_MEMZERO, RAM_G, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := chip.fifo(), le32(CMD_MEMZERO, RAM_G, 16); !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}

	if _, err := e.Command(ctx, CMD_MEMZERO, RAM_G); err == nil {
		t.Errorf("expected an argument count error")
	}
	if _, err := e.Command(ctx, CMD_TEXT); err == nil {
		t.Errorf("expected CMD_TEXT to be refused")
	}
	if _, err := e.Command(ctx, 0xFFFFFFFE); err == nil {
		t.Errorf("expected an unknown command error")
	}
	if _, err := e.Command(ctx, CMD_FLASHFAST); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}

	chip.results[CMD_MEMCRC] = func([]uint32) []uint32 { return []uint32{0xC0FFEE} }
	res, err := e.Command(ctx, CMD_MEMCRC, RAM_G, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0] != 0xC0FFEE {
		t.Errorf("expected [0xC0FFEE], got %X", res)
	}
}

func TestCommandGenericInBurst(t *testing.T) {
	ctx := context.Background()
	e, chip, _ := newTestEngine(t, Options{})

	e.BeginBurst()
	if _, err := e.Command(ctx, CMD_SWAP); err != nil {
		t.Errorf("list command refused in burst: %v", err)
	}
	if _, err := e.Command(ctx, CMD_MEMZERO, RAM_G, 16); !errors.Is(err, ErrBurstActive) {
		t.Errorf("expected ErrBurstActive, got %v", err)
	}
	e.EndBurst()

	if got, want := chip.fifo(), le32(CMD_SWAP); !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}
}

func TestBitmapTransform(t *testing.T) {
	ctx := context.Background()
	e, chip, _ := newTestEngine(t, Options{})
	chip.results[CMD_BITMAP_TRANSFORM] = func(args []uint32) []uint32 {
		if len(args) != 13 {
			t.Errorf("expected 12 arguments and a result slot, got %d words", len(args))
		}
		return []uint32{0xFFFF}
	}

	res, err := e.CmdBitmapTransform(ctx, 0, 0, 1<<16, 0, 0, 1<<16, 0, 0, 1<<16, 0, 0, 1<<16)
	if err != nil {
		t.Fatal(err)
	}
	if res != 0xFFFF {
		t.Errorf("expected 0xFFFF, got 0x%X", res)
	}

	b, bchip, _ := newTestEngine(t, Options{})
	b.BeginBurst()
	if res, err := b.CmdBitmapTransform(ctx, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0); err != nil || res != 0 {
		t.Errorf("expected (0, nil) in burst, got (%d, %v)", res, err)
	}
	b.EndBurst()
	if n := len(bchip.fifo()); n != 4*14 {
		t.Errorf("expected opcode, 12 arguments and a result slot, got %d bytes", n)
	}
}
