package eve

import (
	"context"
	"fmt"
)

// exec runs an out-of-list command to completion: it is queued with room for
// its result words, the FIFO is drained and the results are read back from
// the ring just below the coprocessor write pointer.
func (e *Engine) exec(ctx context.Context, op uint32, args []byte, results int) ([]uint32, error) {
	if err := e.queue(op, args, results); err != nil {
		return nil, err
	}
	if err := e.ExecuteAndWait(ctx); err != nil {
		return nil, err
	}
	if results == 0 {
		return nil, nil
	}
	return e.readResults(results), e.err
}

// start queues an out-of-list command without waiting for it.
func (e *Engine) start(op uint32, args []byte) error {
	return e.queue(op, args, 0)
}

func (e *Engine) queue(op uint32, args []byte, results int) error {
	if _, err := e.supports(op); err != nil {
		return err
	}
	if e.burst {
		return ErrBurstActive
	}
	cmd := make([]byte, 0, 4+len(args)+4*results)
	cmd = appendWord(cmd, op)
	cmd = append(cmd, args...)
	cmd = append(cmd, make([]byte, 4*results)...)
	e.send(cmd)
	return e.err
}

// readResults reads the last k words written to RAM_CMD, oldest first.
func (e *Engine) readResults(k int) []uint32 {
	wp := e.Read16(REG_CMD_WRITE)
	out := make([]uint32, k)
	for i := range out {
		out[i] = e.Read32(RAM_CMD + uint32(Advance(wp, -4*(k-i))))
	}
	return out
}

// withPayload queues op with its argument words and then streams data
// through the FIFO in executed chunks.
func (e *Engine) withPayload(ctx context.Context, op uint32, args []byte, data []byte) error {
	if err := e.start(op, args); err != nil {
		return err
	}
	if len(data) == 0 {
		return e.ExecuteAndWait(ctx)
	}
	return e.blockTransfer(ctx, data)
}

func words(ws ...uint32) []byte {
	var b []byte
	for _, w := range ws {
		b = appendWord(b, w)
	}
	return b
}

func one(res []uint32, err error) (uint32, error) {
	if err != nil {
		return 0, err
	}
	return res[0], nil
}

// CmdInterrupt raises INT_CMDFLAG after ms milliseconds.
func (e *Engine) CmdInterrupt(ctx context.Context, ms uint32) error {
	_, err := e.exec(ctx, CMD_INTERRUPT, words(ms), 0)
	return err
}

// CmdCalibrate runs the touch calibration screen and waits for the user to
// finish it. The result is zero when calibration failed.
func (e *Engine) CmdCalibrate(ctx context.Context) (uint32, error) {
	return one(e.exec(ctx, CMD_CALIBRATE, nil, 1))
}

// CmdCalibrateSub calibrates on a sub-window of the screen (BT817/8).
func (e *Engine) CmdCalibrateSub(ctx context.Context, x, y, w, h uint16) (uint32, error) {
	b := appendPair(appendPair(nil, x, y), w, h)
	return one(e.exec(ctx, CMD_CALIBRATESUB, b, 1))
}

func (e *Engine) CmdMemCRC(ctx context.Context, ptr, n uint32) (uint32, error) {
	return one(e.exec(ctx, CMD_MEMCRC, words(ptr, n), 1))
}

func (e *Engine) CmdRegRead(ctx context.Context, addr uint32) (uint32, error) {
	return one(e.exec(ctx, CMD_REGREAD, words(addr), 1))
}

// CmdMemWrite copies data to chip memory through the FIFO.
func (e *Engine) CmdMemWrite(ctx context.Context, ptr uint32, data []byte) error {
	return e.withPayload(ctx, CMD_MEMWRITE, words(ptr, uint32(len(data))), data)
}

func (e *Engine) CmdMemSet(ctx context.Context, ptr uint32, value uint8, n uint32) error {
	_, err := e.exec(ctx, CMD_MEMSET, words(ptr, uint32(value), n), 0)
	return err
}

func (e *Engine) CmdMemZero(ctx context.Context, ptr, n uint32) error {
	_, err := e.exec(ctx, CMD_MEMZERO, words(ptr, n), 0)
	return err
}

func (e *Engine) CmdSnapshot(ctx context.Context, ptr uint32) error {
	_, err := e.exec(ctx, CMD_SNAPSHOT, words(ptr), 0)
	return err
}

func (e *Engine) CmdSnapshot2(ctx context.Context, format, ptr uint32, x, y int16, w, h uint16) error {
	b := appendPair(appendXY(words(format, ptr), x, y), w, h)
	_, err := e.exec(ctx, CMD_SNAPSHOT2, b, 0)
	return err
}

// CmdInflate decompresses zlib data into RAM_G at ptr.
func (e *Engine) CmdInflate(ctx context.Context, ptr uint32, data []byte) error {
	return e.withPayload(ctx, CMD_INFLATE, words(ptr), data)
}

// CmdInflate2 is CmdInflate with a source option. data is only sent when
// options is zero; with OPT_MEDIAFIFO the call returns right away and with
// OPT_FLASH it waits for the coprocessor.
func (e *Engine) CmdInflate2(ctx context.Context, ptr, options uint32, data []byte) error {
	return e.sourced(ctx, CMD_INFLATE2, words(ptr, options), options, data, options == 0)
}

// CmdLoadImage decodes a JPEG or PNG image into RAM_G at ptr. Direct data
// is streamed in chunks; with OPT_MEDIAFIFO the data is expected in the
// media FIFO and the call does not wait; with OPT_FLASH (BT81x) it waits.
func (e *Engine) CmdLoadImage(ctx context.Context, ptr, options uint32, data []byte) error {
	return e.sourced(ctx, CMD_LOADIMAGE, words(ptr, options), options, data, e.directData(options))
}

func (e *Engine) directData(options uint32) bool {
	if options&uint32(OPT_MEDIAFIFO) != 0 {
		return false
	}
	return e.opt.Generation == Gen2 || options&uint32(OPT_FLASH) == 0
}

func (e *Engine) sourced(ctx context.Context, op uint32, args []byte, options uint32, data []byte, direct bool) error {
	if direct {
		return e.withPayload(ctx, op, args, data)
	}
	if err := e.start(op, args); err != nil {
		return err
	}
	if options&uint32(OPT_MEDIAFIFO) != 0 {
		return nil
	}
	return e.ExecuteAndWait(ctx)
}

// CmdPlayVideo starts video playback and does not wait for it to end, so it
// can be paused or stopped through REG_PLAY_CONTROL. Direct data is
// streamed; media FIFO and flash sources are not.
func (e *Engine) CmdPlayVideo(ctx context.Context, options uint32, data []byte) error {
	if err := e.start(CMD_PLAYVIDEO, words(options)); err != nil {
		return err
	}
	if !e.directData(options) || len(data) == 0 {
		return nil
	}
	return e.blockTransfer(ctx, data)
}

func (e *Engine) CmdGetPtr(ctx context.Context) (uint32, error) {
	return one(e.exec(ctx, CMD_GETPTR, nil, 1))
}

// ImageProps describes the bitmap produced by the last image or video
// command.
type ImageProps struct {
	Ptr, Width, Height uint32
}

func (e *Engine) CmdGetProps(ctx context.Context) (ImageProps, error) {
	res, err := e.exec(ctx, CMD_GETPROPS, nil, 3)
	if err != nil {
		return ImageProps{}, err
	}
	return ImageProps{Ptr: res[0], Width: res[1], Height: res[2]}, nil
}

// Image is the result of CMD_GETIMAGE.
type Image struct {
	Source, Format, Width, Height, Palette uint32
}

func (e *Engine) CmdGetImage(ctx context.Context) (Image, error) {
	res, err := e.exec(ctx, CMD_GETIMAGE, nil, 5)
	if err != nil {
		return Image{}, err
	}
	return Image{Source: res[0], Format: res[1], Width: res[2], Height: res[3], Palette: res[4]}, nil
}

// CmdGetMatrix returns the current bitmap transform matrix a..f.
func (e *Engine) CmdGetMatrix(ctx context.Context) ([6]int32, error) {
	var m [6]int32
	res, err := e.exec(ctx, CMD_GETMATRIX, nil, 6)
	if err != nil {
		return m, err
	}
	for i, v := range res {
		m[i] = int32(v)
	}
	return m, nil
}

func (e *Engine) CmdTrack(ctx context.Context, x, y int16, w, h, tag uint16) error {
	b := appendPair(appendPair(appendXY(nil, x, y), w, h), tag, 0)
	_, err := e.exec(ctx, CMD_TRACK, b, 0)
	return err
}

// CmdLogo plays the vendor logo animation. It takes about 2.5s during which
// RAM_CMD and RAM_DL must be left alone; the call does not wait.
func (e *Engine) CmdLogo() error {
	return e.start(CMD_LOGO, nil)
}

func (e *Engine) CmdColdStart(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_COLDSTART, nil, 0)
	return err
}

func (e *Engine) CmdSetRotate(ctx context.Context, r uint32) error {
	_, err := e.exec(ctx, CMD_SETROTATE, words(r), 0)
	return err
}

func (e *Engine) CmdMediaFIFO(ctx context.Context, ptr, size uint32) error {
	_, err := e.exec(ctx, CMD_MEDIAFIFO, words(ptr, size), 0)
	return err
}

func (e *Engine) CmdVideoStart(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_VIDEOSTART, nil, 0)
	return err
}

func (e *Engine) CmdVideoStartF(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_VIDEOSTARTF, nil, 0)
	return err
}

func (e *Engine) CmdVideoFrame(ctx context.Context, dst, resultPtr uint32) error {
	_, err := e.exec(ctx, CMD_VIDEOFRAME, words(dst, resultPtr), 0)
	return err
}

func (e *Engine) CmdFlashErase(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_FLASHERASE, nil, 0)
	return err
}

// CmdFlashWrite writes data to flash at ptr. ptr must be 256 byte aligned
// and the length a multiple of 256; the chip ignores the command otherwise.
func (e *Engine) CmdFlashWrite(ctx context.Context, ptr uint32, data []byte) error {
	return e.withPayload(ctx, CMD_FLASHWRITE, words(ptr, uint32(len(data))), data)
}

func (e *Engine) CmdFlashRead(ctx context.Context, dst, src, n uint32) error {
	_, err := e.exec(ctx, CMD_FLASHREAD, words(dst, src, n), 0)
	return err
}

func (e *Engine) CmdFlashUpdate(ctx context.Context, dst, src, n uint32) error {
	_, err := e.exec(ctx, CMD_FLASHUPDATE, words(dst, src, n), 0)
	return err
}

func (e *Engine) CmdFlashProgram(ctx context.Context, dst, src, n uint32) error {
	_, err := e.exec(ctx, CMD_FLASHPROGRAM, words(dst, src, n), 0)
	return err
}

func (e *Engine) CmdFlashDetach(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_FLASHDETACH, nil, 0)
	return err
}

func (e *Engine) CmdFlashAttach(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_FLASHATTACH, nil, 0)
	return err
}

// CmdFlashFast switches the flash to full speed mode and returns the
// coprocessor result code (0 on success).
func (e *Engine) CmdFlashFast(ctx context.Context) (uint32, error) {
	return one(e.exec(ctx, CMD_FLASHFAST, nil, 1))
}

func (e *Engine) CmdFlashSPIDesel(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_FLASHSPIDESEL, nil, 0)
	return err
}

func (e *Engine) CmdFlashSPITx(ctx context.Context, data []byte) error {
	return e.withPayload(ctx, CMD_FLASHSPITX, words(uint32(len(data))), data)
}

func (e *Engine) CmdFlashSPIRx(ctx context.Context, dst, n uint32) error {
	_, err := e.exec(ctx, CMD_FLASHSPIRX, words(dst, n), 0)
	return err
}

func (e *Engine) CmdFlashSource(ctx context.Context, ptr uint32) error {
	_, err := e.exec(ctx, CMD_FLASHSOURCE, words(ptr), 0)
	return err
}

// CmdClearCache empties the flash cache. The chip only accepts it while the
// display list does not reference flash, so an empty list is swapped in
// twice first.
func (e *Engine) CmdClearCache(ctx context.Context) error {
	if _, err := e.supports(CMD_CLEARCACHE); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if err := e.CmdMemZero(ctx, RAM_DL, 16); err != nil {
			return err
		}
		e.CmdDLStart()
		e.CmdSwap()
		if err := e.ExecuteAndWait(ctx); err != nil {
			return err
		}
	}
	_, err := e.exec(ctx, CMD_CLEARCACHE, nil, 0)
	return err
}

func (e *Engine) CmdResetFonts(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_RESETFONTS, nil, 0)
	return err
}

func (e *Engine) CmdTestCard(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_TESTCARD, nil, 0)
	return err
}

// CmdHSF enables horizontal scanout filtering for a panel with non-square
// pixels. It does not wait.
func (e *Engine) CmdHSF(hsf uint32) error {
	return e.start(CMD_HSF, words(hsf))
}

// CmdWait delays the coprocessor for us microseconds.
func (e *Engine) CmdWait(ctx context.Context, us uint32) error {
	_, err := e.exec(ctx, CMD_WAIT, words(us), 0)
	return err
}

func (e *Engine) CmdNewList(ctx context.Context, addr uint32) error {
	_, err := e.exec(ctx, CMD_NEWLIST, words(addr), 0)
	return err
}

func (e *Engine) CmdEndList(ctx context.Context) error {
	_, err := e.exec(ctx, CMD_ENDLIST, nil, 0)
	return err
}

// CmdPCLKFreq asks the chip to find a PLL setting for the target pixel
// clock. It returns the frequency actually selected, 0 when none fits.
func (e *Engine) CmdPCLKFreq(ctx context.Context, target uint32, rounding int32) (uint32, error) {
	return one(e.exec(ctx, CMD_PCLKFREQ, words(target, uint32(rounding)), 1))
}

func (e *Engine) CmdFontCache(ctx context.Context, font, ptr, n uint32) error {
	_, err := e.exec(ctx, CMD_FONTCACHE, words(font, ptr, n), 0)
	return err
}

// CmdFontCacheQuery returns the total and used size of the font cache.
func (e *Engine) CmdFontCacheQuery(ctx context.Context) (total, used uint32, err error) {
	res, err := e.exec(ctx, CMD_FONTCACHEQUERY, nil, 2)
	if err != nil {
		return 0, 0, err
	}
	return res[0], res[1], nil
}

// mustGen returns ErrUnsupported when the chip is older than g.
func (e *Engine) mustGen(g Generation, what string) error {
	if e.opt.Generation < g {
		return fmt.Errorf("%w: %s needs %s", ErrUnsupported, what, g)
	}
	return nil
}
