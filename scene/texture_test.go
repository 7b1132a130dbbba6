package scene

import (
	"image"
	"image/color"
	"testing"
)

func TestImageDataFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 1, color.NRGBA{B: 255, A: 255})

	d := ImageDataFromImage(src)
	if !d.Valid() {
		t.Fatalf("invalid ImageData: %dx%d with %d bytes", d.Width, d.Height, len(d.Pixels))
	}
	if d.Width != 2 || d.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", d.Width, d.Height)
	}
	if d.Pixels[0] != 255 || d.Pixels[3] != 255 {
		t.Errorf("texel (0,0) = %v, want red", d.Pixels[0:4])
	}
	off := (1*2 + 1) * 4
	if d.Pixels[off+2] != 255 {
		t.Errorf("texel (1,1) = %v, want blue", d.Pixels[off:off+4])
	}
}

func TestImageDataFromImage_NonZeroOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.RGBA{G: 255, A: 255})

	d := ImageDataFromImage(src)
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", d.Width, d.Height)
	}
	if d.Pixels[1] != 255 {
		t.Errorf("texel (0,0) = %v, want green", d.Pixels[0:4])
	}
}

func TestImageDataFromAlpha(t *testing.T) {
	d := ImageDataFromAlpha(2, 1, []uint8{0, 255})
	if !d.Valid() {
		t.Fatalf("invalid ImageData")
	}
	if got := d.Pixels[0:4]; got[0] != 0 || got[3] != 0 {
		t.Errorf("zero coverage texel = %v, want transparent black", got)
	}
	if got := d.Pixels[4:8]; got[0] != 255 || got[1] != 255 || got[2] != 255 || got[3] != 255 {
		t.Errorf("full coverage texel = %v, want opaque white", got)
	}
}

func TestSubImage(t *testing.T) {
	// 4x4 with a distinct value per texel so displaced rows are caught.
	full := ImageData{Width: 4, Height: 4, Pixels: make([]byte, 4*4*4)}
	for i := 0; i < 16; i++ {
		full.Pixels[i*4] = byte(i)
	}

	sub := full.SubImage(1, 2, 2, 2)
	if sub.Width != 2 || sub.Height != 2 || !sub.Valid() {
		t.Fatalf("sub = %dx%d with %d bytes", sub.Width, sub.Height, len(sub.Pixels))
	}
	want := []byte{9, 10, 13, 14} // texel indices of rect (1,2)-(3,4)
	for i, w := range want {
		if got := sub.Pixels[i*4]; got != w {
			t.Errorf("sub texel %d = %d, want %d", i, got, w)
		}
	}
}

func TestTextureDelta_IsEmpty(t *testing.T) {
	var d TextureDelta
	if !d.IsEmpty() {
		t.Errorf("zero delta not empty")
	}
	d.Free = []TextureID{1}
	if d.IsEmpty() {
		t.Errorf("delta with free list reported empty")
	}
}
