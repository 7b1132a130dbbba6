package scene

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ImageData is a block of RGBA pixel data destined for a GPU texture.
// Pixels are gamma-encoded (sRGB) and premultiplied, 4 bytes per pixel in
// RGBA order, rows top to bottom with no padding.
type ImageData struct {
	Width  int
	Height int
	Pixels []byte
}

// Valid reports whether the pixel buffer matches the declared size.
func (d *ImageData) Valid() bool {
	return len(d.Pixels) == d.Width*d.Height*4
}

// ImageDataFromImage converts any image.Image into ImageData, flattening it
// to non-padded RGBA via x/image/draw.
func ImageDataFromImage(src image.Image) ImageData {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)

	// image.RGBA has a row stride; repack tightly only when needed.
	if dst.Stride == w*4 {
		return ImageData{Width: w, Height: h, Pixels: dst.Pix}
	}
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], dst.Pix[y*dst.Stride:y*dst.Stride+w*4])
	}
	return ImageData{Width: w, Height: h, Pixels: pix}
}

// ImageDataFromAlpha expands a single-channel coverage image (the glyph
// atlas format GUI engines emit for fonts) into premultiplied white sRGBA.
// Coverage is treated as linear-space opacity and re-encoded through the
// shared transfer functions so glyph edges blend the same way textured
// quads do.
func ImageDataFromAlpha(width, height int, coverage []uint8) ImageData {
	pix := make([]byte, 0, len(coverage)*4)
	for _, c := range coverage {
		a := float32(c) / 255.0
		// Premultiplied white: every channel carries the encoded coverage.
		v := uint8(SRGBFromLinear(a) + 0.5)
		pix = append(pix, v, v, v, c)
	}
	return ImageData{Width: width, Height: height, Pixels: pix}
}

// SubImage returns the tightly packed pixels of the rectangle [x, y, x+w,
// y+h) of d. It is used when an engine delivers a full image but only a
// region changed.
func (d *ImageData) SubImage(x, y, w, h int) ImageData {
	pix := make([]byte, 0, w*h*4)
	for row := y; row < y+h; row++ {
		off := (row*d.Width + x) * 4
		pix = append(pix, d.Pixels[off:off+w*4]...)
	}
	return ImageData{Width: w, Height: h, Pixels: pix}
}

// TextureFilter selects how a texture is sampled.
type TextureFilter uint8

const (
	// FilterLinear interpolates between texels. The default, and what
	// font atlases want.
	FilterLinear TextureFilter = iota

	// FilterNearest picks the closest texel. For pixel-art style user
	// textures.
	FilterNearest
)

// TextureUpdate creates or updates a single texture.
//
// Pos == nil means the image replaces the whole texture (creating it on
// first use). Pos != nil is a partial update: Image covers only the given
// sub-rectangle and pixels outside it must not be touched; Filter is
// ignored for partial updates.
type TextureUpdate struct {
	ID     TextureID
	Image  ImageData
	Pos    *[2]int
	Filter TextureFilter
}

// TextureDelta is the set of texture changes for one frame: uploads and
// updates in Set, deletions in Free. Set is applied before drawing and Free
// after, so a texture freed this frame can still be referenced by this
// frame's meshes.
type TextureDelta struct {
	Set  []TextureUpdate
	Free []TextureID
}

// IsEmpty reports whether the delta carries no changes.
func (d *TextureDelta) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Free) == 0
}
