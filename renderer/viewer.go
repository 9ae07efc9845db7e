package renderer

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Viewer shows the latest field state in a raylib window. It only reads the
// values it is handed; it never touches the field itself.
type Viewer struct {
	width, height int32
	side          int

	tex    rl.Texture2D
	pixels []color.RGBA
}

// NewViewer opens a window sized width×height and prepares a side×side texture.
// Must be called from the main goroutine.
func NewViewer(width, height, targetFPS, side int) *Viewer {
	rl.InitWindow(int32(width), int32(height), "Continuous Langton's Ant")
	rl.SetTargetFPS(int32(targetFPS))

	img := rl.GenImageColor(side, side, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)
	rl.UnloadImage(img)

	return &Viewer{
		width:  int32(width),
		height: int32(height),
		side:   side,
		tex:    tex,
		pixels: make([]color.RGBA, side*side),
	}
}

// ShouldClose reports whether the user closed the window.
func (v *Viewer) ShouldClose() bool {
	return rl.WindowShouldClose()
}

// Draw uploads values as grayscale and presents one frame.
func (v *Viewer) Draw(tick int, simTime float64, values []float64) {
	if len(values) != v.side*v.side {
		return
	}
	for i, val := range values {
		g := uint8(min(Quantize(val), 255))
		v.pixels[i] = color.RGBA{R: g, G: g, B: g, A: 255}
	}
	rl.UpdateTexture(v.tex, v.pixels)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	rl.DrawTexturePro(
		v.tex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(v.side), Height: float32(v.side)},
		rl.Rectangle{X: 0, Y: 0, Width: float32(v.width), Height: float32(v.height)},
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
	rl.DrawText(fmt.Sprintf("tick %d  t=%.2f", tick, simTime), 10, 10, 16, rl.Red)
	rl.EndDrawing()
}

// Close releases the texture and closes the window.
func (v *Viewer) Close() {
	rl.UnloadTexture(v.tex)
	rl.CloseWindow()
}
