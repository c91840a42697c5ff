package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"evehal/internal/capture"
	"evehal/internal/config"
	"evehal/internal/convert"
	"evehal/internal/eve"
	"evehal/internal/web"
)

// simChip is an always idle EVE: REG_ID answers 0x7C, the FIFO is always
// empty and register writes land in a sparse memory map.
type simChip struct {
	mu   sync.Mutex
	mem  map[uint32]byte
	cur  []byte
	fifo []byte
}

func newSimChip() *simChip {
	c := &simChip{mem: map[uint32]byte{}}
	c.mem[eve.REG_ID] = 0x7C
	c.put32(eve.ROM_CHIPID, 0x00011208)
	return c
}

func (c *simChip) put32(addr, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	for i, x := range b {
		c.mem[addr+uint32(i)] = x
	}
}

func (c *simChip) Select() error {
	c.mu.Lock()
	c.cur = c.cur[:0]
	c.mu.Unlock()
	return nil
}

func (c *simChip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = append(c.cur, w...)
	if r == nil {
		return nil
	}
	addr := uint32(w[0]&0x3F)<<16 | uint32(w[1])<<8 | uint32(w[2])
	for k := 4; k < len(r); k++ {
		r[k] = c.value(addr + uint32(k-4))
	}
	return nil
}

func (c *simChip) value(a uint32) byte {
	switch a {
	case eve.REG_CMDB_SPACE:
		return 0xFC
	case eve.REG_CMDB_SPACE + 1:
		return 0x0F
	}
	return c.mem[a]
}

func (c *simChip) Deselect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cur) <= 3 || c.cur[0]&0xC0 != 0x80 {
		return nil
	}
	addr := uint32(c.cur[0]&0x3F)<<16 | uint32(c.cur[1])<<8 | uint32(c.cur[2])
	payload := c.cur[3:]
	if addr == eve.REG_CMDB_WRITE {
		c.fifo = append(c.fifo, payload...)
		return nil
	}
	for i, b := range payload {
		c.mem[addr+uint32(i)] = b
	}
	return nil
}

func (c *simChip) PowerDown(bool) error { return nil }

func (c *simChip) hasWord(w uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i+4 <= len(c.fifo); i += 4 {
		if binary.LittleEndian.Uint32(c.fifo[i:]) == w {
			return true
		}
	}
	return false
}

func newSimDevice(t *testing.T) (*device, *simChip) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Display.HSize, cfg.Display.VSize = 64, 32
	cfg.Display.HCycle, cfg.Display.VCycle = 100, 50

	chip := newSimChip()
	e, err := startEngine(context.Background(), chip, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &device{e: e, cfg: cfg}, chip
}

func TestStartEngineRestoresCalibration(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SetTouchTransform([6]uint32{1, 2, 3, 4, 5, 6})
	chip := newSimChip()

	e, err := startEngine(context.Background(), chip, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.TouchTransform(); got != [6]uint32{1, 2, 3, 4, 5, 6} {
		t.Errorf("expected the stored transform, got %v", got)
	}
}

func TestProbe(t *testing.T) {
	d, _ := newSimDevice(t)
	var out bytes.Buffer
	if err := probe(d.e, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "0x00011208") || !strings.Contains(out.String(), "FT81x") {
		t.Errorf("unexpected probe output:\n%s", out.String())
	}
}

func TestShowFrameRGB565(t *testing.T) {
	d, chip := newSimDevice(t)
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	img.Set(0, 0, color.NRGBA{0xFF, 0, 0, 0xFF})
	fr, err := convert.Encode(img, convert.RGB565, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := showFrame(context.Background(), d.e, fr); err != nil {
		t.Fatal(err)
	}
	if chip.mem[frameAddr] != 0x00 || chip.mem[frameAddr+1] != 0xF8 {
		t.Errorf("first pixel not uploaded: % X", []byte{chip.mem[frameAddr], chip.mem[frameAddr+1]})
	}
	if !chip.hasWord(eve.CMD_SETBITMAP) || !chip.hasWord(eve.CMD_SWAP) {
		t.Errorf("frame not drawn")
	}
}

func TestShowFramePaletted8(t *testing.T) {
	d, chip := newSimDevice(t)
	img := image.NewNRGBA(image.Rect(0, 0, 10, 3))
	fr, err := convert.Encode(img, convert.Paletted8, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := showFrame(context.Background(), d.e, fr); err != nil {
		t.Fatal(err)
	}
	// 30 index bytes, palette aligned to 32
	if !chip.hasWord(eve.PaletteSource(32 + 3)) {
		t.Errorf("alpha pass does not read the palette at offset 32")
	}
	if !chip.hasWord(eve.PaletteSource(32)) {
		t.Errorf("blue pass missing")
	}
}

func TestShowFrameJPEG(t *testing.T) {
	d, chip := newSimDevice(t)
	fr, err := convert.Encode(image.NewNRGBA(image.Rect(0, 0, 16, 16)), convert.JPEG, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := showFrame(context.Background(), d.e, fr); err != nil {
		t.Fatal(err)
	}
	if !chip.hasWord(eve.CMD_LOADIMAGE) {
		t.Errorf("jpeg not sent through CMD_LOADIMAGE")
	}
}

func TestDrawDemo(t *testing.T) {
	d, chip := newSimDevice(t)
	if err := drawDemo(context.Background(), d.e, 800, 480, tagButton, true); err != nil {
		t.Fatal(err)
	}
	for _, w := range []uint32{eve.CMD_DLSTART, eve.CMD_BUTTON, eve.CMD_TOGGLE, eve.CMD_GAUGE, eve.CMD_SWAP} {
		if !chip.hasWord(w) {
			t.Errorf("%s missing from the demo list", eve.CommandName(w))
		}
	}
}

func TestCalibrate(t *testing.T) {
	d, chip := newSimDevice(t)

	if err := calibrate(context.Background(), d.e, d.cfg); !errors.Is(err, errCalibrationFailed) {
		t.Fatalf("expected a failed calibration for result 0, got %v", err)
	}

	// the result slot sits right below REG_CMD_WRITE (0)
	chip.put32(eve.RAM_CMD+0xFFC, 1)
	chip.put32(eve.REG_TOUCH_TRANSFORM_A, 0x8000)
	if err := calibrate(context.Background(), d.e, d.cfg); err != nil {
		t.Fatal(err)
	}
	m, ok := d.cfg.TouchTransform()
	if !ok || m[0] != 0x8000 {
		t.Errorf("transform not stored: %v %v", m, ok)
	}
}

func TestMirrorRefreshPlaceholder(t *testing.T) {
	d, chip := newSimDevice(t)
	srv := web.NewServer(d.cfg)
	m := &mirror{
		dev: d,
		cfg: d.cfg,
		srv: srv,
		capture: func(context.Context, capture.Options) (image.Image, error) {
			return nil, errors.New("chromium not installed")
		},
	}

	m.refresh(context.Background())

	st := srv.Snapshot()
	if st.Frames != 1 || st.LastError != "chromium not installed" {
		t.Errorf("unexpected status %+v", st)
	}
	if st.ChipID != 0x00011208 {
		t.Errorf("chip state not published: %+v", st)
	}
	if !chip.hasWord(eve.CMD_LOADIMAGE) {
		t.Errorf("placeholder frame not uploaded")
	}
}

func TestMirrorRefreshRGB565(t *testing.T) {
	d, chip := newSimDevice(t)
	d.cfg.Mirror.Format = "rgb565"
	srv := web.NewServer(d.cfg)
	m := &mirror{
		dev: d,
		cfg: d.cfg,
		srv: srv,
		capture: func(_ context.Context, o capture.Options) (image.Image, error) {
			if o.Width != 64 || o.Height != 32 {
				t.Errorf("capture at %dx%d, expected the panel size", o.Width, o.Height)
			}
			img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
			for i := 0; i < len(img.Pix); i += 4 {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0xFF, 0xFF
			}
			return img, nil
		},
	}

	m.refresh(context.Background())

	if st := srv.Snapshot(); st.Frames != 1 || st.LastError != "" || st.Format != "rgb565" {
		t.Errorf("unexpected status %+v", st)
	}
	if chip.mem[frameAddr] != 0x1F || chip.mem[frameAddr+1] != 0x00 {
		t.Errorf("expected blue RGB565 pixels in RAM_G")
	}
}
