// Command hostsim simulates a host application's present loop against the
// in-memory device, driving the full overlay frame path — state capture,
// scene production, texture sync, painting, restore — without a GPU or a
// real host process.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/internal/gltest"
	"github.com/gogpu/overlay/internal/paint"
	"github.com/gogpu/overlay/scene"
)

func main() {
	var (
		frames  = flag.Int("frames", 120, "number of simulated present calls")
		width   = flag.Int("width", 1280, "host framebuffer width in pixels")
		height  = flag.Int("height", 720, "host framebuffer height in pixels")
		scale   = flag.Float64("scale", 1.0, "pixels per logical point")
		verbose = flag.Bool("v", false, "log overlay diagnostics to stderr")
	)
	flag.Parse()

	if *verbose {
		overlay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	device := gltest.NewDevice()
	device.ViewportBox = [4]int32{0, 0, int32(*width), int32(*height)}
	api := device.API()

	painter, err := paint.NewPainter(api)
	if err != nil {
		log.Fatalf("build painter: %v", err)
	}
	defer painter.Destroy()

	screen := scene.Screen{Width: *width, Height: *height, PixelsPerPoint: float32(*scale)}
	producer := newDemoProducer()

	// The host's own mid-frame state; every frame must hand it back intact.
	hostState := device.CaptureState()

	for frame := 0; frame < *frames; frame++ {
		snap := paint.Capture(api)

		meshes, delta := producer.ProduceScene(nil, screen)
		if err := painter.SyncTextures(delta.Set); err != nil {
			log.Printf("frame %d: texture sync: %v", frame, err)
		}
		if err := painter.Paint(screen, meshes); err != nil {
			log.Printf("frame %d: paint: %v", frame, err)
		}
		painter.FreeTextures(delta.Free)

		snap.Restore(api)
		if got := device.CaptureState(); got != hostState {
			log.Fatalf("frame %d leaked device state:\n got %+v\nwant %+v", frame, got, hostState)
		}
	}

	fmt.Printf("frames:    %d\n", *frames)
	fmt.Printf("draws:     %d\n", len(device.Draws))
	fmt.Printf("textures:  %d alive\n", device.TextureCount())
	fmt.Printf("state:     restored after every frame\n")
}

// demoProducer renders a quad orbiting the screen center, uploading its
// texture on the first frame only.
type demoProducer struct {
	frame int
}

func newDemoProducer() *demoProducer { return &demoProducer{} }

func (p *demoProducer) ProduceScene(_ []scene.Event, screen scene.Screen) ([]scene.Mesh, scene.TextureDelta) {
	var delta scene.TextureDelta
	if p.frame == 0 {
		checker := scene.ImageData{Width: 2, Height: 2, Pixels: []byte{
			255, 255, 255, 255, 128, 128, 128, 255,
			128, 128, 128, 255, 255, 255, 255, 255,
		}}
		delta.Set = []scene.TextureUpdate{{ID: 1, Image: checker, Filter: scene.FilterNearest}}
	}

	angle := float64(p.frame) * 2 * math.Pi / 120
	cx := screen.PointWidth()/2 + 100*float32(math.Cos(angle))
	cy := screen.PointHeight()/2 + 100*float32(math.Sin(angle))
	const half = float32(40)

	quad := scene.Mesh{
		Vertices: []scene.Vertex{
			{Pos: [2]float32{cx - half, cy - half}, UV: [2]float32{0, 0}, Color: [4]uint8{255, 160, 0, 255}},
			{Pos: [2]float32{cx + half, cy - half}, UV: [2]float32{1, 0}, Color: [4]uint8{255, 160, 0, 255}},
			{Pos: [2]float32{cx - half, cy + half}, UV: [2]float32{0, 1}, Color: [4]uint8{255, 160, 0, 255}},
			{Pos: [2]float32{cx + half, cy + half}, UV: [2]float32{1, 1}, Color: [4]uint8{255, 160, 0, 255}},
		},
		Indices: []uint32{0, 1, 2, 2, 1, 3},
		Texture: 1,
		Clip:    screen.Bounds(),
	}

	p.frame++
	return []scene.Mesh{quad}, delta
}
