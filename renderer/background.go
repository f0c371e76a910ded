package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundColor is the dark blue the scene is cleared to.
var BackgroundColor = rl.NewColor(13, 13, 26, 255)

// DrawBackground clears the frame.
func DrawBackground() {
	rl.ClearBackground(BackgroundColor)
}
