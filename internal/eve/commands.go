package eve

import (
	"context"
	"fmt"
)

type cmdKind uint8

const (
	// kindList commands build display lists. They work inside and outside
	// of a burst and never wait for the coprocessor.
	kindList cmdKind = iota
	// kindExec commands are refused in a burst and wait for completion.
	kindExec
	// kindStart commands are refused in a burst but return right after the
	// command is queued.
	kindStart
)

type cmdInfo struct {
	name string
	gen  Generation
	kind cmdKind
	// args is the number of argument words, -1 when the command carries a
	// string or a payload and needs its typed method.
	args int
	// results is the number of trailing words the coprocessor fills in.
	results int
}

var cmdTable = map[uint32]cmdInfo{
	CMD_DLSTART:          {"DLSTART", Gen2, kindList, 0, 0},
	CMD_SWAP:             {"SWAP", Gen2, kindList, 0, 0},
	CMD_INTERRUPT:        {"INTERRUPT", Gen2, kindExec, 1, 0},
	CMD_BGCOLOR:          {"BGCOLOR", Gen2, kindList, 1, 0},
	CMD_FGCOLOR:          {"FGCOLOR", Gen2, kindList, 1, 0},
	CMD_GRADIENT:         {"GRADIENT", Gen2, kindList, 4, 0},
	CMD_TEXT:             {"TEXT", Gen2, kindList, -1, 0},
	CMD_BUTTON:           {"BUTTON", Gen2, kindList, -1, 0},
	CMD_KEYS:             {"KEYS", Gen2, kindList, -1, 0},
	CMD_PROGRESS:         {"PROGRESS", Gen2, kindList, 4, 0},
	CMD_SLIDER:           {"SLIDER", Gen2, kindList, 4, 0},
	CMD_SCROLLBAR:        {"SCROLLBAR", Gen2, kindList, 4, 0},
	CMD_TOGGLE:           {"TOGGLE", Gen2, kindList, -1, 0},
	CMD_GAUGE:            {"GAUGE", Gen2, kindList, 4, 0},
	CMD_CLOCK:            {"CLOCK", Gen2, kindList, 4, 0},
	CMD_CALIBRATE:        {"CALIBRATE", Gen2, kindExec, 0, 1},
	CMD_SPINNER:          {"SPINNER", Gen2, kindList, 2, 0},
	CMD_STOP:             {"STOP", Gen2, kindList, 0, 0},
	CMD_MEMCRC:           {"MEMCRC", Gen2, kindExec, 2, 1},
	CMD_REGREAD:          {"REGREAD", Gen2, kindExec, 1, 1},
	CMD_MEMWRITE:         {"MEMWRITE", Gen2, kindExec, -1, 0},
	CMD_MEMSET:           {"MEMSET", Gen2, kindExec, 3, 0},
	CMD_MEMZERO:          {"MEMZERO", Gen2, kindExec, 2, 0},
	CMD_MEMCPY:           {"MEMCPY", Gen2, kindList, 3, 0},
	CMD_APPEND:           {"APPEND", Gen2, kindList, 2, 0},
	CMD_SNAPSHOT:         {"SNAPSHOT", Gen2, kindExec, 1, 0},
	CMD_BITMAP_TRANSFORM: {"BITMAP_TRANSFORM", Gen2, kindList, 12, 1},
	CMD_INFLATE:          {"INFLATE", Gen2, kindExec, -1, 0},
	CMD_GETPTR:           {"GETPTR", Gen2, kindExec, 0, 1},
	CMD_LOADIMAGE:        {"LOADIMAGE", Gen2, kindExec, -1, 0},
	CMD_GETPROPS:         {"GETPROPS", Gen2, kindExec, 0, 3},
	CMD_LOADIDENTITY:     {"LOADIDENTITY", Gen2, kindList, 0, 0},
	CMD_TRANSLATE:        {"TRANSLATE", Gen2, kindList, 2, 0},
	CMD_SCALE:            {"SCALE", Gen2, kindList, 2, 0},
	CMD_ROTATE:           {"ROTATE", Gen2, kindList, 1, 0},
	CMD_SETMATRIX:        {"SETMATRIX", Gen2, kindList, 0, 0},
	CMD_SETFONT:          {"SETFONT", Gen2, kindList, 2, 0},
	CMD_TRACK:            {"TRACK", Gen2, kindExec, 3, 0},
	CMD_DIAL:             {"DIAL", Gen2, kindList, 3, 0},
	CMD_NUMBER:           {"NUMBER", Gen2, kindList, 3, 0},
	CMD_SCREENSAVER:      {"SCREENSAVER", Gen2, kindList, 0, 0},
	CMD_SKETCH:           {"SKETCH", Gen2, kindList, 4, 0},
	CMD_LOGO:             {"LOGO", Gen2, kindStart, 0, 0},
	CMD_COLDSTART:        {"COLDSTART", Gen2, kindExec, 0, 0},
	CMD_GETMATRIX:        {"GETMATRIX", Gen2, kindExec, 0, 6},
	CMD_GRADCOLOR:        {"GRADCOLOR", Gen2, kindList, 1, 0},
	CMD_SETROTATE:        {"SETROTATE", Gen2, kindExec, 1, 0},
	CMD_SNAPSHOT2:        {"SNAPSHOT2", Gen2, kindExec, 4, 0},
	CMD_SETBASE:          {"SETBASE", Gen2, kindList, 1, 0},
	CMD_MEDIAFIFO:        {"MEDIAFIFO", Gen2, kindExec, 2, 0},
	CMD_PLAYVIDEO:        {"PLAYVIDEO", Gen2, kindStart, -1, 0},
	CMD_SETFONT2:         {"SETFONT2", Gen2, kindList, 3, 0},
	CMD_SETSCRATCH:       {"SETSCRATCH", Gen2, kindList, 1, 0},
	CMD_ROMFONT:          {"ROMFONT", Gen2, kindList, 2, 0},
	CMD_VIDEOSTART:       {"VIDEOSTART", Gen2, kindExec, 0, 0},
	CMD_VIDEOFRAME:       {"VIDEOFRAME", Gen2, kindExec, 2, 0},
	CMD_SYNC:             {"SYNC", Gen2, kindList, 0, 0},
	CMD_SETBITMAP:        {"SETBITMAP", Gen2, kindList, 3, 0},

	CMD_FLASHERASE:    {"FLASHERASE", Gen3, kindExec, 0, 0},
	CMD_FLASHWRITE:    {"FLASHWRITE", Gen3, kindExec, -1, 0},
	CMD_FLASHREAD:     {"FLASHREAD", Gen3, kindExec, 3, 0},
	CMD_FLASHUPDATE:   {"FLASHUPDATE", Gen3, kindExec, 3, 0},
	CMD_FLASHDETACH:   {"FLASHDETACH", Gen3, kindExec, 0, 0},
	CMD_FLASHATTACH:   {"FLASHATTACH", Gen3, kindExec, 0, 0},
	CMD_FLASHFAST:     {"FLASHFAST", Gen3, kindExec, 0, 1},
	CMD_FLASHSPIDESEL: {"FLASHSPIDESEL", Gen3, kindExec, 0, 0},
	CMD_FLASHSPITX:    {"FLASHSPITX", Gen3, kindExec, -1, 0},
	CMD_FLASHSPIRX:    {"FLASHSPIRX", Gen3, kindExec, 2, 0},
	CMD_FLASHSOURCE:   {"FLASHSOURCE", Gen3, kindExec, 1, 0},
	CMD_CLEARCACHE:    {"CLEARCACHE", Gen3, kindExec, 0, 0},
	CMD_INFLATE2:      {"INFLATE2", Gen3, kindExec, -1, 0},
	CMD_ROTATEAROUND:  {"ROTATEAROUND", Gen3, kindList, 4, 0},
	CMD_RESETFONTS:    {"RESETFONTS", Gen3, kindExec, 0, 0},
	CMD_ANIMSTART:     {"ANIMSTART", Gen3, kindList, 3, 0},
	CMD_ANIMSTOP:      {"ANIMSTOP", Gen3, kindList, 1, 0},
	CMD_ANIMXY:        {"ANIMXY", Gen3, kindList, 2, 0},
	CMD_ANIMDRAW:      {"ANIMDRAW", Gen3, kindList, 1, 0},
	CMD_GRADIENTA:     {"GRADIENTA", Gen3, kindList, 4, 0},
	CMD_FILLWIDTH:     {"FILLWIDTH", Gen3, kindList, 1, 0},
	CMD_APPENDF:       {"APPENDF", Gen3, kindList, 2, 0},
	CMD_ANIMFRAME:     {"ANIMFRAME", Gen3, kindList, 3, 0},
	CMD_VIDEOSTARTF:   {"VIDEOSTARTF", Gen3, kindExec, 0, 0},

	CMD_CALIBRATESUB:   {"CALIBRATESUB", Gen4, kindExec, 2, 1},
	CMD_TESTCARD:       {"TESTCARD", Gen4, kindExec, 0, 0},
	CMD_HSF:            {"HSF", Gen4, kindStart, 1, 0},
	CMD_APILEVEL:       {"APILEVEL", Gen4, kindList, 1, 0},
	CMD_GETIMAGE:       {"GETIMAGE", Gen4, kindExec, 0, 5},
	CMD_WAIT:           {"WAIT", Gen4, kindExec, 1, 0},
	CMD_RETURN:         {"RETURN", Gen4, kindList, 0, 0},
	CMD_CALLLIST:       {"CALLLIST", Gen4, kindList, 1, 0},
	CMD_NEWLIST:        {"NEWLIST", Gen4, kindExec, 1, 0},
	CMD_ENDLIST:        {"ENDLIST", Gen4, kindExec, 0, 0},
	CMD_PCLKFREQ:       {"PCLKFREQ", Gen4, kindExec, 2, 1},
	CMD_FONTCACHE:      {"FONTCACHE", Gen4, kindExec, 3, 0},
	CMD_FONTCACHEQUERY: {"FONTCACHEQUERY", Gen4, kindExec, 0, 2},
	CMD_ANIMFRAMERAM:   {"ANIMFRAMERAM", Gen4, kindList, 3, 0},
	CMD_ANIMSTARTRAM:   {"ANIMSTARTRAM", Gen4, kindList, 3, 0},
	CMD_RUNANIM:        {"RUNANIM", Gen4, kindList, 2, 0},
	CMD_FLASHPROGRAM:   {"FLASHPROGRAM", Gen4, kindExec, 3, 0},
}

// CommandName returns the vendor name of a coprocessor opcode.
func CommandName(op uint32) string {
	if ci, ok := cmdTable[op]; ok {
		return "CMD_" + ci.name
	}
	return fmt.Sprintf("0x%08X", op)
}

func (e *Engine) supports(op uint32) (cmdInfo, error) {
	ci, ok := cmdTable[op]
	if !ok {
		return cmdInfo{}, fmt.Errorf("eve: unknown command 0x%08X", op)
	}
	if ci.gen > e.opt.Generation {
		return ci, fmt.Errorf("%w: CMD_%s needs %s", ErrUnsupported, ci.name, ci.gen)
	}
	return ci, nil
}

// list issues a display list command in the framing of the current mode.
// Errors are recorded in Err.
func (e *Engine) list(op uint32, args []byte) {
	if _, err := e.supports(op); err != nil {
		e.setMisuse(err)
		return
	}
	cmd := appendWord(make([]byte, 0, 4+len(args)), op)
	e.send(append(cmd, args...))
}

func (e *Engine) listWords(op uint32, words ...uint32) {
	var args []byte
	for _, w := range words {
		args = appendWord(args, w)
	}
	e.list(op, args)
}

// Command issues any table command whose arguments are plain words. List
// commands are queued in the current framing and return no results; out of
// list commands run to completion and return the words the coprocessor wrote
// back.
func (e *Engine) Command(ctx context.Context, op uint32, args ...uint32) ([]uint32, error) {
	ci, err := e.supports(op)
	if err != nil {
		return nil, err
	}
	if ci.args < 0 {
		return nil, fmt.Errorf("eve: CMD_%s carries a string or payload", ci.name)
	}
	if len(args) != ci.args {
		return nil, fmt.Errorf("eve: CMD_%s takes %d arguments, got %d", ci.name, ci.args, len(args))
	}
	var b []byte
	for _, w := range args {
		b = appendWord(b, w)
	}
	switch {
	case ci.kind == kindList && (ci.results == 0 || e.burst):
		e.list(op, append(b, make([]byte, 4*ci.results)...))
		return nil, e.err
	case ci.kind == kindStart:
		return nil, e.start(op, b)
	default:
		return e.exec(ctx, op, b, ci.results)
	}
}

// CmdDL queues raw words, typically display list words built with the
// encoder functions of this package, through the command FIFO.
func (e *Engine) CmdDL(words ...uint32) {
	if len(words) == 0 {
		return
	}
	var b []byte
	for _, w := range words {
		b = appendWord(b, w)
	}
	e.send(b)
}

func (e *Engine) CmdDLStart()      { e.listWords(CMD_DLSTART) }
func (e *Engine) CmdSwap()         { e.listWords(CMD_SWAP) }
func (e *Engine) CmdStop()         { e.listWords(CMD_STOP) }
func (e *Engine) CmdLoadIdentity() { e.listWords(CMD_LOADIDENTITY) }
func (e *Engine) CmdSetMatrix()    { e.listWords(CMD_SETMATRIX) }
func (e *Engine) CmdScreenSaver()  { e.listWords(CMD_SCREENSAVER) }
func (e *Engine) CmdSync()         { e.listWords(CMD_SYNC) }
func (e *Engine) CmdReturn()       { e.listWords(CMD_RETURN) }

func (e *Engine) CmdBGColor(rgb uint32)         { e.listWords(CMD_BGCOLOR, rgb) }
func (e *Engine) CmdFGColor(rgb uint32)         { e.listWords(CMD_FGCOLOR, rgb) }
func (e *Engine) CmdGradColor(rgb uint32)       { e.listWords(CMD_GRADCOLOR, rgb) }
func (e *Engine) CmdSetBase(base uint32)        { e.listWords(CMD_SETBASE, base) }
func (e *Engine) CmdSetScratch(handle uint32)   { e.listWords(CMD_SETSCRATCH, handle) }
func (e *Engine) CmdFillWidth(pixels uint32)    { e.listWords(CMD_FILLWIDTH, pixels) }
func (e *Engine) CmdAPILevel(level uint32)      { e.listWords(CMD_APILEVEL, level) }
func (e *Engine) CmdCallList(addr uint32)       { e.listWords(CMD_CALLLIST, addr) }
func (e *Engine) CmdAnimDraw(ch int32)          { e.listWords(CMD_ANIMDRAW, uint32(ch)) }
func (e *Engine) CmdAnimStop(ch int32)          { e.listWords(CMD_ANIMSTOP, uint32(ch)) }
func (e *Engine) CmdRotate(angle uint32)        { e.listWords(CMD_ROTATE, angle&0xFFFF) }
func (e *Engine) CmdScale(sx, sy int32)         { e.listWords(CMD_SCALE, uint32(sx), uint32(sy)) }
func (e *Engine) CmdTranslate(tx, ty int32)     { e.listWords(CMD_TRANSLATE, uint32(tx), uint32(ty)) }
func (e *Engine) CmdRomFont(font, slot uint32)  { e.listWords(CMD_ROMFONT, font, slot) }
func (e *Engine) CmdSetFont(font, ptr uint32)   { e.listWords(CMD_SETFONT, font, ptr) }
func (e *Engine) CmdAppend(ptr, num uint32)     { e.listWords(CMD_APPEND, ptr, num) }
func (e *Engine) CmdAppendF(ptr, num uint32)    { e.listWords(CMD_APPENDF, ptr, num) }
func (e *Engine) CmdRunAnim(mask, play uint32)  { e.listWords(CMD_RUNANIM, mask, play) }
func (e *Engine) CmdMemCpy(dst, src, n uint32)  { e.listWords(CMD_MEMCPY, dst, src, n) }
func (e *Engine) CmdSetFont2(font, ptr, first uint32) {
	e.listWords(CMD_SETFONT2, font, ptr, first)
}

func (e *Engine) CmdAnimStart(ch int32, aoptr, loop uint32) {
	e.listWords(CMD_ANIMSTART, uint32(ch), aoptr, loop)
}

func (e *Engine) CmdAnimStartRAM(ch int32, aoptr, loop uint32) {
	e.listWords(CMD_ANIMSTARTRAM, uint32(ch), aoptr, loop)
}

func (e *Engine) CmdAnimXY(ch int32, x, y int16) {
	e.list(CMD_ANIMXY, appendXY(appendWord(nil, uint32(ch)), x, y))
}

func (e *Engine) CmdAnimFrame(x, y int16, aoptr, frame uint32) {
	e.list(CMD_ANIMFRAME, appendWord(appendWord(appendXY(nil, x, y), aoptr), frame))
}

func (e *Engine) CmdAnimFrameRAM(x, y int16, aoptr, frame uint32) {
	e.list(CMD_ANIMFRAMERAM, appendWord(appendWord(appendXY(nil, x, y), aoptr), frame))
}

func (e *Engine) CmdRotateAround(x, y int32, angle uint32, scale int32) {
	e.listWords(CMD_ROTATEAROUND, uint32(x), uint32(y), angle&0xFFFF, uint32(scale))
}

// text carries the string argument of TEXT, BUTTON, TOGGLE and KEYS plus
// the OPT_FORMAT arguments, which are only sent when the option is set.
func appendText(b []byte, opt uint16, s string, fmtArgs []uint32) []byte {
	b = appendString(b, s)
	if opt&OPT_FORMAT != 0 {
		for _, a := range fmtArgs {
			b = appendWord(b, a)
		}
	}
	return b
}

func (e *Engine) CmdText(x, y int16, font, opt uint16, s string, fmtArgs ...uint32) {
	b := appendPair(appendXY(nil, x, y), font, opt)
	e.list(CMD_TEXT, appendText(b, opt, s, fmtArgs))
}

func (e *Engine) CmdButton(x, y int16, w, h, font, opt uint16, s string, fmtArgs ...uint32) {
	b := appendPair(appendPair(appendXY(nil, x, y), w, h), font, opt)
	e.list(CMD_BUTTON, appendText(b, opt, s, fmtArgs))
}

func (e *Engine) CmdToggle(x, y int16, w, font, opt, state uint16, s string, fmtArgs ...uint32) {
	b := appendPair(appendPair(appendXY(nil, x, y), w, font), opt, state)
	e.list(CMD_TOGGLE, appendText(b, opt, s, fmtArgs))
}

func (e *Engine) CmdKeys(x, y int16, w, h, font, opt uint16, keys string) {
	b := appendPair(appendPair(appendXY(nil, x, y), w, h), font, opt)
	e.list(CMD_KEYS, appendString(b, keys))
}

func (e *Engine) CmdNumber(x, y int16, font, opt uint16, n int32) {
	b := appendPair(appendXY(nil, x, y), font, opt)
	e.list(CMD_NUMBER, appendWord(b, uint32(n)))
}

func (e *Engine) CmdClock(x, y int16, r, opt, hours, minutes, seconds, millis uint16) {
	b := appendPair(appendXY(nil, x, y), r, opt)
	b = appendPair(appendPair(b, hours, minutes), seconds, millis)
	e.list(CMD_CLOCK, b)
}

func (e *Engine) CmdDial(x, y int16, r, opt, val uint16) {
	b := appendPair(appendPair(appendXY(nil, x, y), r, opt), val, 0)
	e.list(CMD_DIAL, b)
}

func (e *Engine) CmdGauge(x, y int16, r, opt, major, minor, val, rng uint16) {
	b := appendPair(appendXY(nil, x, y), r, opt)
	b = appendPair(appendPair(b, major, minor), val, rng)
	e.list(CMD_GAUGE, b)
}

func (e *Engine) CmdGradient(x0, y0 int16, rgb0 uint32, x1, y1 int16, rgb1 uint32) {
	b := appendWord(appendXY(nil, x0, y0), rgb0)
	e.list(CMD_GRADIENT, appendWord(appendXY(b, x1, y1), rgb1))
}

func (e *Engine) CmdGradientA(x0, y0 int16, argb0 uint32, x1, y1 int16, argb1 uint32) {
	b := appendWord(appendXY(nil, x0, y0), argb0)
	e.list(CMD_GRADIENTA, appendWord(appendXY(b, x1, y1), argb1))
}

func (e *Engine) CmdProgress(x, y int16, w, h, opt, val, rng uint16) {
	b := appendPair(appendXY(nil, x, y), w, h)
	e.list(CMD_PROGRESS, appendPair(appendPair(b, opt, val), rng, 0))
}

func (e *Engine) CmdSlider(x, y int16, w, h, opt, val, rng uint16) {
	b := appendPair(appendXY(nil, x, y), w, h)
	e.list(CMD_SLIDER, appendPair(appendPair(b, opt, val), rng, 0))
}

func (e *Engine) CmdScrollbar(x, y int16, w, h, opt, val, size, rng uint16) {
	b := appendPair(appendXY(nil, x, y), w, h)
	e.list(CMD_SCROLLBAR, appendPair(appendPair(b, opt, val), size, rng))
}

func (e *Engine) CmdSpinner(x, y int16, style, scale uint16) {
	e.list(CMD_SPINNER, appendPair(appendXY(nil, x, y), style, scale))
}

func (e *Engine) CmdSetBitmap(addr uint32, format, w, h uint16) {
	b := appendPair(appendWord(nil, addr), format, w)
	e.list(CMD_SETBITMAP, appendPair(b, h, 0))
}

func (e *Engine) CmdSketch(x, y int16, w, h uint16, ptr uint32, format uint16) {
	b := appendWord(appendPair(appendXY(nil, x, y), w, h), ptr)
	e.list(CMD_SKETCH, appendPair(b, format, 0))
}

// CmdBitmapTransform maps the three source points onto the three target
// points. Outside a burst it waits for the coprocessor and returns its
// result word (0xFFFF when the transform is not solvable); inside a burst
// the result is not available and 0 is returned.
func (e *Engine) CmdBitmapTransform(ctx context.Context, x0, y0, x1, y1, x2, y2, tx0, ty0, tx1, ty1, tx2, ty2 int32) (uint16, error) {
	var b []byte
	for _, v := range [...]int32{x0, y0, x1, y1, x2, y2, tx0, ty0, tx1, ty1, tx2, ty2} {
		b = appendWord(b, uint32(v))
	}
	if e.burst {
		e.list(CMD_BITMAP_TRANSFORM, appendWord(b, 0))
		return 0, e.err
	}
	res, err := e.exec(ctx, CMD_BITMAP_TRANSFORM, b, 1)
	if err != nil {
		return 0, err
	}
	return uint16(res[0]), nil
}
