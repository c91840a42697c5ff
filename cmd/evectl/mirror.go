package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/robfig/cron/v3"

	"evehal/internal/capture"
	"evehal/internal/config"
	"evehal/internal/convert"
	"evehal/internal/eve"
	appLog "evehal/internal/log"
	"evehal/internal/web"
)

const (
	// frameAddr is where frames are uploaded in RAM_G.
	frameAddr = eve.RAM_G
	// uploadChunk keeps each register-space write below the 4KiB transfer
	// limit of spidev.
	uploadChunk = 4000
	jpegQuality = 85
)

type captureFunc func(ctx context.Context, opts capture.Options) (image.Image, error)

// mirror periodically captures a web page and shows it on the panel.
type mirror struct {
	dev     *device
	cfg     *config.Config
	srv     *web.Server
	capture captureFunc
}

// run refreshes once and then on every tick of the configured schedule
// until ctx is cancelled.
func (m *mirror) run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
		cron.WithLogger(cronLogger{}),
	)
	if _, err := c.AddFunc(m.cfg.Mirror.Schedule, func() { m.refresh(ctx) }); err != nil {
		return fmt.Errorf("evectl: mirror schedule: %w", err)
	}

	m.refresh(ctx)
	c.Start()
	appLog.Info("mirror scheduled", "schedule", m.cfg.Mirror.Schedule, "url", m.cfg.Mirror.URL)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// refresh runs one capture, convert and upload cycle. Capture failures are
// shown on the panel as a placeholder frame.
func (m *mirror) refresh(ctx context.Context) {
	w, h := int(m.cfg.Display.HSize), int(m.cfg.Display.VSize)
	start := time.Now()

	var lastErr string
	img, err := m.capture(ctx, capture.Options{
		URL:     m.cfg.Mirror.URL,
		Width:   w,
		Height:  h,
		Timeout: m.cfg.MirrorTimeout(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		appLog.Error("capture failed", err, "url", m.cfg.Mirror.URL)
		lastErr = err.Error()
		img = convert.Placeholder(w, h, "capture failed: "+m.cfg.Mirror.URL, err.Error())
	}
	img = convert.Fit(img, w, h)

	fr, err := convert.Encode(img, convert.Format(m.cfg.Mirror.Format), jpegQuality)
	if err != nil {
		appLog.Error("convert failed", err)
		m.fail(err)
		return
	}
	preview := fr.Data
	if fr.Format != convert.JPEG {
		if preview, err = convert.EncodeJPEG(img, jpegQuality); err != nil {
			appLog.Error("preview encode failed", err)
		}
	}

	m.dev.mu.Lock()
	err = showFrame(ctx, m.dev.e, fr)
	m.dev.mu.Unlock()
	if err != nil {
		appLog.Error("upload failed", err, "format", fr.Format)
		m.dev.mu.Lock()
		m.dev.e.ClearErr()
		m.dev.mu.Unlock()
		m.fail(err)
		return
	}

	appLog.Info("frame shown", "format", fr.Format, "bytes", fr.Size(), "took", time.Since(start).String())
	m.srv.SetPreview(preview)
	m.srv.Update(func(st *web.Status) {
		st.Frames++
		st.LastFrame = time.Now()
		st.LastError = lastErr
		st.Format = string(fr.Format)
	})
	m.dev.publish(m.srv)
}

func (m *mirror) fail(err error) {
	m.srv.Update(func(st *web.Status) { st.LastError = err.Error() })
}

// showFrame uploads fr to RAM_G and displays it full screen.
func showFrame(ctx context.Context, e *eve.Engine, fr *convert.Frame) error {
	var (
		format uint16
		lut    uint32
	)
	switch fr.Format {
	case convert.JPEG:
		// decoded to RGB565 without touching the display list
		if err := e.CmdLoadImage(ctx, frameAddr, uint32(eve.OPT_NODL), fr.Data); err != nil {
			return err
		}
		format = uint16(eve.RGB565)
	case convert.RGB565:
		upload(e, frameAddr, fr.Data)
		format = uint16(eve.RGB565)
	case convert.Paletted8:
		upload(e, frameAddr, fr.Data)
		lut = (frameAddr + uint32(len(fr.Data)) + 3) &^ 3
		upload(e, lut, fr.Palette)
		format = uint16(eve.PALETTED8)
	default:
		return fmt.Errorf("evectl: cannot show %q frames", fr.Format)
	}
	if err := e.Err(); err != nil {
		return err
	}

	e.BeginBurst()
	e.CmdDLStart()
	e.CmdDL(eve.ClearColorRGB(0), eve.Clear(true, true, true))
	e.CmdSetBitmap(frameAddr, format, uint16(fr.Width), uint16(fr.Height))
	e.CmdDL(eve.Begin(eve.BITMAPS))
	if fr.Format == convert.Paletted8 {
		// one pass per channel, alpha first
		e.CmdDL(
			eve.BlendFunc(eve.ONE, eve.ZERO),
			eve.ColorMask(0, 0, 0, 1),
			eve.PaletteSource(lut+3),
			eve.Vertex2II(0, 0, 0, 0),
			eve.BlendFunc(eve.DST_ALPHA, eve.ONE_MINUS_DST_ALPHA),
			eve.ColorMask(1, 0, 0, 0),
			eve.PaletteSource(lut+2),
			eve.Vertex2II(0, 0, 0, 0),
			eve.ColorMask(0, 1, 0, 0),
			eve.PaletteSource(lut+1),
			eve.Vertex2II(0, 0, 0, 0),
			eve.ColorMask(0, 0, 1, 0),
			eve.PaletteSource(lut),
			eve.Vertex2II(0, 0, 0, 0),
		)
	} else {
		e.CmdDL(eve.Vertex2II(0, 0, 0, 0))
	}
	e.CmdDL(eve.End(), eve.Display())
	e.CmdSwap()
	e.EndBurst()
	return e.ExecuteAndWait(ctx)
}

// upload writes data to RAM_G in spidev sized pieces.
func upload(e *eve.Engine, addr uint32, data []byte) {
	for off := 0; off < len(data); off += uploadChunk {
		end := min(off+uploadChunk, len(data))
		e.WriteBuffer(addr+uint32(off), data[off:end])
	}
}

// cronLogger routes cron's messages to the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}
