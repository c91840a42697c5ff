package eve

// Display list word encoders. Every operand is masked to the width of its
// field; out of range values wrap instead of being rejected.

func b2u(v uint8) uint32 { return uint32(v & 1) }

func AlphaFunc(fn, ref uint8) uint32 {
	return DL_ALPHA_FUNC | uint32(fn&7)<<8 | uint32(ref)
}

func Begin(prim uint8) uint32 {
	return DL_BEGIN | uint32(prim&0x0F)
}

func BitmapExtFormat(format uint16) uint32 {
	return DL_BITMAP_EXT_FORMAT | uint32(format)
}

func BitmapHandle(handle uint8) uint32 {
	return DL_BITMAP_HANDLE | uint32(handle&0x1F)
}

func BitmapLayout(format uint8, stride, height uint16) uint32 {
	return DL_BITMAP_LAYOUT | uint32(format&0x1F)<<19 | uint32(stride&0x3FF)<<9 | uint32(height&0x1FF)
}

// BitmapLayoutH carries the high bits of stride and height that do not fit
// into BitmapLayout.
func BitmapLayoutH(stride, height uint16) uint32 {
	return DL_BITMAP_LAYOUT_H | uint32((stride>>10)&3)<<2 | uint32((height>>9)&3)
}

func BitmapSize(filter, wrapX, wrapY uint8, width, height uint16) uint32 {
	return DL_BITMAP_SIZE | b2u(filter)<<20 | b2u(wrapX)<<19 | b2u(wrapY)<<18 |
		uint32(width&0x1FF)<<9 | uint32(height&0x1FF)
}

func BitmapSizeH(width, height uint16) uint32 {
	return DL_BITMAP_SIZE_H | uint32((width>>9)&3)<<2 | uint32((height>>9)&3)
}

// BitmapSource takes a RAM_G address, or a flash address with bit 23 set on
// BT81x.
func BitmapSource(addr uint32) uint32 {
	return DL_BITMAP_SOURCE | addr&0xFFFFFF
}

func BitmapSwizzle(r, g, b, a uint8) uint32 {
	return DL_BITMAP_SWIZZLE | uint32(r&7)<<9 | uint32(g&7)<<6 | uint32(b&7)<<3 | uint32(a&7)
}

// BitmapTransform encodes one of the A..F coefficients. idx 0 is A and is
// taken modulo 6. With p set the coefficient is read as 1.15 fixed point
// instead of 8.8.
func BitmapTransform(idx int, p bool, v int32) uint32 {
	w := DL_BITMAP_TRANSFORM_A + (uint32(idx)%6)<<24 | uint32(v)&0x1FFFF
	if p {
		w |= 1 << 17
	}
	return w
}

func BlendFunc(src, dst uint8) uint32 {
	return DL_BLEND_FUNC | uint32(src&7)<<3 | uint32(dst&7)
}

func Call(dest uint16) uint32 {
	return DL_CALL | uint32(dest)
}

func Cell(cell uint8) uint32 {
	return DL_CELL | uint32(cell&0x7F)
}

func Clear(color, stencil, tag bool) uint32 {
	w := DL_CLEAR
	if color {
		w |= uint32(CLR_COL)
	}
	if stencil {
		w |= uint32(CLR_STN)
	}
	if tag {
		w |= uint32(CLR_TAG)
	}
	return w
}

func ClearColorA(alpha uint8) uint32 {
	return DL_CLEAR_COLOR_A | uint32(alpha)
}

func ClearColorRGB(rgb uint32) uint32 {
	return DL_CLEAR_COLOR_RGB | rgb&0xFFFFFF
}

func ClearStencil(v uint8) uint32 {
	return DL_CLEAR_STENCIL | uint32(v)
}

func ClearTag(v uint8) uint32 {
	return DL_CLEAR_TAG | uint32(v)
}

func ColorA(alpha uint8) uint32 {
	return DL_COLOR_A | uint32(alpha)
}

func ColorMask(r, g, b, a uint8) uint32 {
	return DL_COLOR_MASK | b2u(r)<<3 | b2u(g)<<2 | b2u(b)<<1 | b2u(a)
}

func ColorRGB(rgb uint32) uint32 {
	return DL_COLOR_RGB | rgb&0xFFFFFF
}

func Display() uint32 { return DL_DISPLAY }

func End() uint32 { return DL_END }

func Jump(dest uint16) uint32 {
	return DL_JUMP | uint32(dest)
}

func LineWidth(width uint16) uint32 {
	return DL_LINE_WIDTH | uint32(width&0xFFF)
}

func Macro(m uint8) uint32 {
	return DL_MACRO | b2u(m)
}

func Nop() uint32 { return DL_NOP }

func PaletteSource(addr uint32) uint32 {
	return DL_PALETTE_SOURCE | addr&0x3FFFFF
}

func PointSize(size uint16) uint32 {
	return DL_POINT_SIZE | uint32(size&0x1FFF)
}

func RestoreContext() uint32 { return DL_RESTORE_CONTEXT }

func Return() uint32 { return DL_RETURN }

func SaveContext() uint32 { return DL_SAVE_CONTEXT }

func ScissorSize(width, height uint16) uint32 {
	return DL_SCISSOR_SIZE | uint32(width&0xFFF)<<12 | uint32(height&0xFFF)
}

func ScissorXY(x, y uint16) uint32 {
	return DL_SCISSOR_XY | uint32(x&0x7FF)<<11 | uint32(y&0x7FF)
}

func StencilFunc(fn, ref, mask uint8) uint32 {
	return DL_STENCIL_FUNC | uint32(fn&7)<<16 | uint32(ref)<<8 | uint32(mask)
}

func StencilMask(mask uint8) uint32 {
	return DL_STENCIL_MASK | uint32(mask)
}

func StencilOp(sfail, spass uint8) uint32 {
	return DL_STENCIL_OP | uint32(sfail&7)<<3 | uint32(spass&7)
}

func Tag(tag uint8) uint32 {
	return DL_TAG | uint32(tag)
}

func TagMask(mask uint8) uint32 {
	return DL_TAG_MASK | b2u(mask)
}

// Vertex2F takes coordinates in the unit selected by VertexFormat, 1/16
// pixel by default.
func Vertex2F(x, y int16) uint32 {
	return DL_VERTEX2F | (uint32(uint16(x))&0x7FFF)<<15 | uint32(uint16(y))&0x7FFF
}

func Vertex2II(x, y uint16, handle, cell uint8) uint32 {
	return DL_VERTEX2II | uint32(x&0x1FF)<<21 | uint32(y&0x1FF)<<12 |
		uint32(handle&0x1F)<<7 | uint32(cell&0x7F)
}

func VertexFormat(frac uint8) uint32 {
	return DL_VERTEX_FORMAT | uint32(frac&7)
}

func VertexTranslateX(x int32) uint32 {
	return DL_VERTEX_TRANSLATE_X | uint32(x)&0x1FFFF
}

func VertexTranslateY(y int32) uint32 {
	return DL_VERTEX_TRANSLATE_Y | uint32(y)&0x1FFFF
}
