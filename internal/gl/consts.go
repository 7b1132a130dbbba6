package gl

// Pipeline enums, limited to what the overlay painter and state guard touch.
const (
	FALSE = 0
	TRUE  = 1

	NO_ERROR = 0

	TRIANGLES = 0x0004

	UNSIGNED_BYTE  = 0x1401
	UNSIGNED_SHORT = 0x1403
	FLOAT          = 0x1406

	FRAGMENT_SHADER = 0x8B30
	VERTEX_SHADER   = 0x8B31
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	INFO_LOG_LENGTH = 0x8B84

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	STREAM_DRAW          = 0x88E0

	TEXTURE_2D         = 0x0DE1
	TEXTURE0           = 0x84C0
	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	NEAREST            = 0x2600
	LINEAR             = 0x2601
	CLAMP_TO_EDGE      = 0x812F
	RGBA               = 0x1908
	RGBA8              = 0x8058
	UNPACK_ALIGNMENT   = 0x0CF5

	BLEND               = 0x0BE2
	SCISSOR_TEST        = 0x0C11
	FRAMEBUFFER_SRGB    = 0x8DB9
	ONE                 = 1
	ONE_MINUS_SRC_ALPHA = 0x0303

	// Snapshot queries.
	CURRENT_PROGRAM              = 0x8B8D
	VERTEX_ARRAY_BINDING         = 0x85B5
	ARRAY_BUFFER_BINDING         = 0x8894
	ELEMENT_ARRAY_BUFFER_BINDING = 0x8895
	ACTIVE_TEXTURE               = 0x84E0
	TEXTURE_BINDING_2D           = 0x8069
	BLEND_SRC_RGB                = 0x80C9
	BLEND_DST_RGB                = 0x80C8
	SCISSOR_BOX                  = 0x0C10
	VIEWPORT                     = 0x0BA2
)
