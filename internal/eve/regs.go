package eve

// Memory map.
const (
	RAM_G          uint32 = 0x000000
	ROM_CHIPID     uint32 = 0x0C0000
	ROM_FONT       uint32 = 0x1E0000
	ROM_FONT_ADDR  uint32 = 0x2FFFFC
	RAM_DL         uint32 = 0x300000
	RAM_REG        uint32 = 0x302000
	RAM_CMD        uint32 = 0x308000
	RAM_ERR_REPORT uint32 = 0x309800

	// FIFOSize is the size of the RAM_CMD ring in bytes.
	FIFOSize = 4096
	fifoMask = FIFOSize - 1

	// FIFOEmpty is the REG_CMDB_SPACE value of an idle coprocessor.
	FIFOEmpty uint16 = 0xFFC
	fifoHalf  uint16 = 0x800
)

// Registers shared by FT81x and BT81x.
const (
	REG_ID                uint32 = 0x302000
	REG_FRAMES            uint32 = 0x302004
	REG_CLOCK             uint32 = 0x302008
	REG_FREQUENCY         uint32 = 0x30200C
	REG_RENDERMODE        uint32 = 0x302010
	REG_SNAPY             uint32 = 0x302014
	REG_SNAPSHOT          uint32 = 0x302018
	REG_SNAPFORMAT        uint32 = 0x30201C
	REG_CPURESET          uint32 = 0x302020
	REG_TAP_CRC           uint32 = 0x302024
	REG_TAP_MASK          uint32 = 0x302028
	REG_HCYCLE            uint32 = 0x30202C
	REG_HOFFSET           uint32 = 0x302030
	REG_HSIZE             uint32 = 0x302034
	REG_HSYNC0            uint32 = 0x302038
	REG_HSYNC1            uint32 = 0x30203C
	REG_VCYCLE            uint32 = 0x302040
	REG_VOFFSET           uint32 = 0x302044
	REG_VSIZE             uint32 = 0x302048
	REG_VSYNC0            uint32 = 0x30204C
	REG_VSYNC1            uint32 = 0x302050
	REG_DLSWAP            uint32 = 0x302054
	REG_ROTATE            uint32 = 0x302058
	REG_OUTBITS           uint32 = 0x30205C
	REG_DITHER            uint32 = 0x302060
	REG_SWIZZLE           uint32 = 0x302064
	REG_CSPREAD           uint32 = 0x302068
	REG_PCLK_POL          uint32 = 0x30206C
	REG_PCLK              uint32 = 0x302070
	REG_TAG_X             uint32 = 0x302074
	REG_TAG_Y             uint32 = 0x302078
	REG_TAG               uint32 = 0x30207C
	REG_VOL_PB            uint32 = 0x302080
	REG_VOL_SOUND         uint32 = 0x302084
	REG_SOUND             uint32 = 0x302088
	REG_PLAY              uint32 = 0x30208C
	REG_GPIO_DIR          uint32 = 0x302090
	REG_GPIO              uint32 = 0x302094
	REG_GPIOX_DIR         uint32 = 0x302098
	REG_GPIOX             uint32 = 0x30209C
	REG_INT_FLAGS         uint32 = 0x3020A8
	REG_INT_EN            uint32 = 0x3020AC
	REG_INT_MASK          uint32 = 0x3020B0
	REG_PLAYBACK_START    uint32 = 0x3020B4
	REG_PLAYBACK_LENGTH   uint32 = 0x3020B8
	REG_PLAYBACK_READPTR  uint32 = 0x3020BC
	REG_PLAYBACK_FREQ     uint32 = 0x3020C0
	REG_PLAYBACK_FORMAT   uint32 = 0x3020C4
	REG_PLAYBACK_LOOP     uint32 = 0x3020C8
	REG_PLAYBACK_PLAY     uint32 = 0x3020CC
	REG_PWM_HZ            uint32 = 0x3020D0
	REG_PWM_DUTY          uint32 = 0x3020D4
	REG_MACRO_0           uint32 = 0x3020D8
	REG_MACRO_1           uint32 = 0x3020DC
	REG_CMD_READ          uint32 = 0x3020F8
	REG_CMD_WRITE         uint32 = 0x3020FC
	REG_CMD_DL            uint32 = 0x302100
	REG_TOUCH_MODE        uint32 = 0x302104
	REG_TOUCH_ADC_MODE    uint32 = 0x302108
	REG_TOUCH_CHARGE      uint32 = 0x30210C
	REG_TOUCH_SETTLE      uint32 = 0x302110
	REG_TOUCH_OVERSAMPLE  uint32 = 0x302114
	REG_TOUCH_RZTHRESH    uint32 = 0x302118
	REG_TOUCH_RAW_XY      uint32 = 0x30211C
	REG_TOUCH_RZ          uint32 = 0x302120
	REG_TOUCH_SCREEN_XY   uint32 = 0x302124
	REG_TOUCH_TAG_XY      uint32 = 0x302128
	REG_TOUCH_TAG         uint32 = 0x30212C
	REG_TOUCH_TRANSFORM_A uint32 = 0x302150
	REG_TOUCH_TRANSFORM_B uint32 = 0x302154
	REG_TOUCH_TRANSFORM_C uint32 = 0x302158
	REG_TOUCH_TRANSFORM_D uint32 = 0x30215C
	REG_TOUCH_TRANSFORM_E uint32 = 0x302160
	REG_TOUCH_TRANSFORM_F uint32 = 0x302164
	REG_TOUCH_CONFIG      uint32 = 0x302168
	REG_SPI_WIDTH         uint32 = 0x302188
	REG_CMDB_SPACE        uint32 = 0x302574
	REG_CMDB_WRITE        uint32 = 0x302578
)

// BT81x registers.
const (
	REG_ADAPTIVE_FRAMERATE uint32 = 0x30257C
	REG_FLASH_STATUS       uint32 = 0x3025F0
	REG_MEDIAFIFO_READ     uint32 = 0x309014
	REG_MEDIAFIFO_WRITE    uint32 = 0x309018
	REG_FLASH_SIZE         uint32 = 0x309024
	REG_ANIM_ACTIVE        uint32 = 0x30902C
	REG_PLAY_CONTROL       uint32 = 0x30914E
	REG_COPRO_PATCH_PTR    uint32 = 0x309162
	REG_PCLK_FREQ          uint32 = 0x309170
	REG_PCLK_2X            uint32 = 0x309184
)

// Host commands, sent as three bytes outside of any memory transaction.
const (
	HOST_ACTIVE    uint8 = 0x00
	HOST_STANDBY   uint8 = 0x41
	HOST_SLEEP     uint8 = 0x42
	HOST_CLKEXT    uint8 = 0x44
	HOST_CLKINT    uint8 = 0x48
	HOST_PD_ROMS   uint8 = 0x49
	HOST_PWRDOWN   uint8 = 0x50
	HOST_CLKSEL    uint8 = 0x61
	HOST_RST_PULSE uint8 = 0x68
	HOST_PINDRIVE  uint8 = 0x70
)

// Coprocessor commands, FT81x.
const (
	CMD_DLSTART          uint32 = 0xFFFFFF00
	CMD_SWAP             uint32 = 0xFFFFFF01
	CMD_INTERRUPT        uint32 = 0xFFFFFF02
	CMD_BGCOLOR          uint32 = 0xFFFFFF09
	CMD_FGCOLOR          uint32 = 0xFFFFFF0A
	CMD_GRADIENT         uint32 = 0xFFFFFF0B
	CMD_TEXT             uint32 = 0xFFFFFF0C
	CMD_BUTTON           uint32 = 0xFFFFFF0D
	CMD_KEYS             uint32 = 0xFFFFFF0E
	CMD_PROGRESS         uint32 = 0xFFFFFF0F
	CMD_SLIDER           uint32 = 0xFFFFFF10
	CMD_SCROLLBAR        uint32 = 0xFFFFFF11
	CMD_TOGGLE           uint32 = 0xFFFFFF12
	CMD_GAUGE            uint32 = 0xFFFFFF13
	CMD_CLOCK            uint32 = 0xFFFFFF14
	CMD_CALIBRATE        uint32 = 0xFFFFFF15
	CMD_SPINNER          uint32 = 0xFFFFFF16
	CMD_STOP             uint32 = 0xFFFFFF17
	CMD_MEMCRC           uint32 = 0xFFFFFF18
	CMD_REGREAD          uint32 = 0xFFFFFF19
	CMD_MEMWRITE         uint32 = 0xFFFFFF1A
	CMD_MEMSET           uint32 = 0xFFFFFF1B
	CMD_MEMZERO          uint32 = 0xFFFFFF1C
	CMD_MEMCPY           uint32 = 0xFFFFFF1D
	CMD_APPEND           uint32 = 0xFFFFFF1E
	CMD_SNAPSHOT         uint32 = 0xFFFFFF1F
	CMD_BITMAP_TRANSFORM uint32 = 0xFFFFFF21
	CMD_INFLATE          uint32 = 0xFFFFFF22
	CMD_GETPTR           uint32 = 0xFFFFFF23
	CMD_LOADIMAGE        uint32 = 0xFFFFFF24
	CMD_GETPROPS         uint32 = 0xFFFFFF25
	CMD_LOADIDENTITY     uint32 = 0xFFFFFF26
	CMD_TRANSLATE        uint32 = 0xFFFFFF27
	CMD_SCALE            uint32 = 0xFFFFFF28
	CMD_ROTATE           uint32 = 0xFFFFFF29
	CMD_SETMATRIX        uint32 = 0xFFFFFF2A
	CMD_SETFONT          uint32 = 0xFFFFFF2B
	CMD_TRACK            uint32 = 0xFFFFFF2C
	CMD_DIAL             uint32 = 0xFFFFFF2D
	CMD_NUMBER           uint32 = 0xFFFFFF2E
	CMD_SCREENSAVER      uint32 = 0xFFFFFF2F
	CMD_SKETCH           uint32 = 0xFFFFFF30
	CMD_LOGO             uint32 = 0xFFFFFF31
	CMD_COLDSTART        uint32 = 0xFFFFFF32
	CMD_GETMATRIX        uint32 = 0xFFFFFF33
	CMD_GRADCOLOR        uint32 = 0xFFFFFF34
	CMD_SETROTATE        uint32 = 0xFFFFFF36
	CMD_SNAPSHOT2        uint32 = 0xFFFFFF37
	CMD_SETBASE          uint32 = 0xFFFFFF38
	CMD_MEDIAFIFO        uint32 = 0xFFFFFF39
	CMD_PLAYVIDEO        uint32 = 0xFFFFFF3A
	CMD_SETFONT2         uint32 = 0xFFFFFF3B
	CMD_SETSCRATCH       uint32 = 0xFFFFFF3C
	CMD_ROMFONT          uint32 = 0xFFFFFF3F
	CMD_VIDEOSTART       uint32 = 0xFFFFFF40
	CMD_VIDEOFRAME       uint32 = 0xFFFFFF41
	CMD_SYNC             uint32 = 0xFFFFFF42
	CMD_SETBITMAP        uint32 = 0xFFFFFF43
)

// Coprocessor commands, BT815/BT816.
const (
	CMD_FLASHERASE    uint32 = 0xFFFFFF44
	CMD_FLASHWRITE    uint32 = 0xFFFFFF45
	CMD_FLASHREAD     uint32 = 0xFFFFFF46
	CMD_FLASHUPDATE   uint32 = 0xFFFFFF47
	CMD_FLASHDETACH   uint32 = 0xFFFFFF48
	CMD_FLASHATTACH   uint32 = 0xFFFFFF49
	CMD_FLASHFAST     uint32 = 0xFFFFFF4A
	CMD_FLASHSPIDESEL uint32 = 0xFFFFFF4B
	CMD_FLASHSPITX    uint32 = 0xFFFFFF4C
	CMD_FLASHSPIRX    uint32 = 0xFFFFFF4D
	CMD_FLASHSOURCE   uint32 = 0xFFFFFF4E
	CMD_CLEARCACHE    uint32 = 0xFFFFFF4F
	CMD_INFLATE2      uint32 = 0xFFFFFF50
	CMD_ROTATEAROUND  uint32 = 0xFFFFFF51
	CMD_RESETFONTS    uint32 = 0xFFFFFF52
	CMD_ANIMSTART     uint32 = 0xFFFFFF53
	CMD_ANIMSTOP      uint32 = 0xFFFFFF54
	CMD_ANIMXY        uint32 = 0xFFFFFF55
	CMD_ANIMDRAW      uint32 = 0xFFFFFF56
	CMD_GRADIENTA     uint32 = 0xFFFFFF57
	CMD_FILLWIDTH     uint32 = 0xFFFFFF58
	CMD_APPENDF       uint32 = 0xFFFFFF59
	CMD_ANIMFRAME     uint32 = 0xFFFFFF5A
	CMD_VIDEOSTARTF   uint32 = 0xFFFFFF5F
)

// Coprocessor commands, BT817/BT818.
const (
	CMD_CALIBRATESUB   uint32 = 0xFFFFFF60
	CMD_TESTCARD       uint32 = 0xFFFFFF61
	CMD_HSF            uint32 = 0xFFFFFF62
	CMD_APILEVEL       uint32 = 0xFFFFFF63
	CMD_GETIMAGE       uint32 = 0xFFFFFF64
	CMD_WAIT           uint32 = 0xFFFFFF65
	CMD_RETURN         uint32 = 0xFFFFFF66
	CMD_CALLLIST       uint32 = 0xFFFFFF67
	CMD_NEWLIST        uint32 = 0xFFFFFF68
	CMD_ENDLIST        uint32 = 0xFFFFFF69
	CMD_PCLKFREQ       uint32 = 0xFFFFFF6A
	CMD_FONTCACHE      uint32 = 0xFFFFFF6B
	CMD_FONTCACHEQUERY uint32 = 0xFFFFFF6C
	CMD_ANIMFRAMERAM   uint32 = 0xFFFFFF6D
	CMD_ANIMSTARTRAM   uint32 = 0xFFFFFF6E
	CMD_RUNANIM        uint32 = 0xFFFFFF6F
	CMD_FLASHPROGRAM   uint32 = 0xFFFFFF70
)

// Display list opcodes.
const (
	DL_DISPLAY            uint32 = 0x00000000
	DL_BITMAP_SOURCE      uint32 = 0x01000000
	DL_CLEAR_COLOR_RGB    uint32 = 0x02000000
	DL_TAG                uint32 = 0x03000000
	DL_COLOR_RGB          uint32 = 0x04000000
	DL_BITMAP_HANDLE      uint32 = 0x05000000
	DL_CELL               uint32 = 0x06000000
	DL_BITMAP_LAYOUT      uint32 = 0x07000000
	DL_BITMAP_SIZE        uint32 = 0x08000000
	DL_ALPHA_FUNC         uint32 = 0x09000000
	DL_STENCIL_FUNC       uint32 = 0x0A000000
	DL_BLEND_FUNC         uint32 = 0x0B000000
	DL_STENCIL_OP         uint32 = 0x0C000000
	DL_POINT_SIZE         uint32 = 0x0D000000
	DL_LINE_WIDTH         uint32 = 0x0E000000
	DL_CLEAR_COLOR_A      uint32 = 0x0F000000
	DL_COLOR_A            uint32 = 0x10000000
	DL_CLEAR_STENCIL      uint32 = 0x11000000
	DL_CLEAR_TAG          uint32 = 0x12000000
	DL_STENCIL_MASK       uint32 = 0x13000000
	DL_TAG_MASK           uint32 = 0x14000000
	DL_BITMAP_TRANSFORM_A uint32 = 0x15000000
	DL_BITMAP_TRANSFORM_B uint32 = 0x16000000
	DL_BITMAP_TRANSFORM_C uint32 = 0x17000000
	DL_BITMAP_TRANSFORM_D uint32 = 0x18000000
	DL_BITMAP_TRANSFORM_E uint32 = 0x19000000
	DL_BITMAP_TRANSFORM_F uint32 = 0x1A000000
	DL_SCISSOR_XY         uint32 = 0x1B000000
	DL_SCISSOR_SIZE       uint32 = 0x1C000000
	DL_CALL               uint32 = 0x1D000000
	DL_JUMP               uint32 = 0x1E000000
	DL_BEGIN              uint32 = 0x1F000000
	DL_COLOR_MASK         uint32 = 0x20000000
	DL_END                uint32 = 0x21000000
	DL_SAVE_CONTEXT       uint32 = 0x22000000
	DL_RESTORE_CONTEXT    uint32 = 0x23000000
	DL_RETURN             uint32 = 0x24000000
	DL_MACRO              uint32 = 0x25000000
	DL_CLEAR              uint32 = 0x26000000
	DL_VERTEX_FORMAT      uint32 = 0x27000000
	DL_BITMAP_LAYOUT_H    uint32 = 0x28000000
	DL_BITMAP_SIZE_H      uint32 = 0x29000000
	DL_PALETTE_SOURCE     uint32 = 0x2A000000
	DL_VERTEX_TRANSLATE_X uint32 = 0x2B000000
	DL_VERTEX_TRANSLATE_Y uint32 = 0x2C000000
	DL_NOP                uint32 = 0x2D000000
	DL_BITMAP_EXT_FORMAT  uint32 = 0x2E000000
	DL_BITMAP_SWIZZLE     uint32 = 0x2F000000
	DL_VERTEX2F           uint32 = 0x40000000
	DL_VERTEX2II          uint32 = 0x80000000
)

// CLEAR flags.
const (
	CLR_COL uint8 = 0x4
	CLR_STN uint8 = 0x2
	CLR_TAG uint8 = 0x1
)

const (
	DLSWAP_DONE  uint8 = 0
	DLSWAP_LINE  uint8 = 1
	DLSWAP_FRAME uint8 = 2
)

// Primitives for BEGIN.
const (
	BITMAPS      uint8 = 1
	POINTS       uint8 = 2
	LINES        uint8 = 3
	LINE_STRIP   uint8 = 4
	EDGE_STRIP_R uint8 = 5
	EDGE_STRIP_L uint8 = 6
	EDGE_STRIP_A uint8 = 7
	EDGE_STRIP_B uint8 = 8
	RECTS        uint8 = 9
)

// Bitmap formats.
const (
	ARGB1555     uint8 = 0
	L1           uint8 = 1
	L4           uint8 = 2
	L8           uint8 = 3
	RGB332       uint8 = 4
	ARGB2        uint8 = 5
	ARGB4        uint8 = 6
	RGB565       uint8 = 7
	TEXT8X8      uint8 = 9
	TEXTVGA      uint8 = 10
	BARGRAPH     uint8 = 11
	PALETTED565  uint8 = 14
	PALETTED4444 uint8 = 15
	PALETTED8    uint8 = 16
	L2           uint8 = 17
)

// Bitmap filter and wrap modes.
const (
	NEAREST  uint8 = 0
	BILINEAR uint8 = 1
	BORDER   uint8 = 0
	REPEAT   uint8 = 1
)

// Blend factors and test functions.
const (
	ZERO                uint8 = 0
	ONE                 uint8 = 1
	SRC_ALPHA           uint8 = 2
	DST_ALPHA           uint8 = 3
	ONE_MINUS_SRC_ALPHA uint8 = 4
	ONE_MINUS_DST_ALPHA uint8 = 5

	NEVER    uint8 = 0
	LESS     uint8 = 1
	LEQUAL   uint8 = 2
	GREATER  uint8 = 3
	GEQUAL   uint8 = 4
	EQUAL    uint8 = 5
	NOTEQUAL uint8 = 6
	ALWAYS   uint8 = 7

	STENCIL_KEEP    uint8 = 1
	STENCIL_REPLACE uint8 = 2
	STENCIL_INCR    uint8 = 3
	STENCIL_DECR    uint8 = 4
	STENCIL_INVERT  uint8 = 5
)

// Coprocessor widget options.
const (
	OPT_3D         uint16 = 0
	OPT_RGB565     uint16 = 0
	OPT_MONO       uint16 = 1
	OPT_NODL       uint16 = 2
	OPT_NOTEAR     uint16 = 4
	OPT_FULLSCREEN uint16 = 8
	OPT_MEDIAFIFO  uint16 = 16
	OPT_SOUND      uint16 = 32
	OPT_FLASH      uint16 = 64
	OPT_OVERLAY    uint16 = 128
	OPT_FLAT       uint16 = 256
	OPT_SIGNED     uint16 = 256
	OPT_DITHER     uint16 = 256
	OPT_CENTERX    uint16 = 512
	OPT_CENTERY    uint16 = 1024
	OPT_CENTER     uint16 = 1536
	OPT_FORMAT     uint16 = 4096
	OPT_NOBACK     uint16 = 4096
	OPT_FILL       uint16 = 8192
	OPT_NOTICKS    uint16 = 8192
	OPT_NOHM       uint16 = 16384
	OPT_NOPOINTER  uint16 = 16384
	OPT_NOSECS     uint16 = 32768
	OPT_NOHANDS    uint16 = 49152
	OPT_RIGHTX     uint16 = 2048
)

// REG_FLASH_STATUS values.
const (
	FLASH_STATUS_INIT     uint8 = 0
	FLASH_STATUS_DETACHED uint8 = 1
	FLASH_STATUS_BASIC    uint8 = 2
	FLASH_STATUS_FULL     uint8 = 3
)

// Miscellaneous register values.
const (
	// regIDValue is the fixed content of REG_ID once the chip is up.
	regIDValue uint8 = 0x7C

	TMODE_OFF        uint8 = 0
	TMODE_CONTINUOUS uint8 = 3

	// soundMute is the REG_SOUND value selecting the "mute" effect.
	soundMute uint16 = 0x60

	// clkselPLL selects 6x the 12MHz reference with the high PLL range bit.
	clkselPLL uint8 = 0x86
	bt81xFreq uint32 = 72000000

	gt911TouchConfig uint16 = 0x05D0
)
