package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Tone selects the overlay text color.
type Tone int

const (
	ToneNeutral Tone = iota // no hand in view
	ToneReady               // hand in view, waiting for the operator
	ToneResult              // live prediction
)

// KeyNone is returned by WaitKey when no key was pressed.
const KeyNone = -1

// Overlay is the information drawn on top of a preview frame.
type Overlay struct {
	Text string
	Tone Tone
	// Hand, when set, is drawn as landmark dots.
	Hand *detector.HandLandmarks
}

// Display shows preview frames and polls the keyboard.
type Display interface {
	// Show draws overlay onto frame and presents it.
	Show(frame *gocv.Mat, overlay Overlay)
	// WaitKey waits up to delayMs for a key press and returns its code,
	// or KeyNone.
	WaitKey(delayMs int) int
	Close() error
}

var toneColors = map[Tone]color.RGBA{
	ToneNeutral: {R: 255, G: 0, B: 0, A: 0},
	ToneReady:   {R: 0, G: 255, B: 0, A: 0},
	ToneResult:  {R: 0, G: 255, B: 255, A: 0},
}

// WindowDisplay is a Display backed by an OpenCV HighGUI window.
type WindowDisplay struct {
	window *gocv.Window
}

// NewWindowDisplay opens a preview window with the given title.
func NewWindowDisplay(title string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(title)}
}

// Show implements Display.
func (d *WindowDisplay) Show(frame *gocv.Mat, overlay Overlay) {
	if frame == nil || frame.Empty() {
		return
	}
	Draw(frame, overlay)
	d.window.IMShow(*frame)
}

// WaitKey implements Display.
func (d *WindowDisplay) WaitKey(delayMs int) int {
	key := d.window.WaitKey(delayMs)
	if key < 0 {
		return KeyNone
	}
	return key & 0xFF
}

// Close implements Display.
func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

// Draw renders overlay onto frame in place.
func Draw(frame *gocv.Mat, overlay Overlay) {
	c := toneColors[overlay.Tone]

	if overlay.Hand != nil {
		w, h := float64(frame.Cols()), float64(frame.Rows())
		for _, p := range overlay.Hand.Points {
			pt := image.Pt(int(p.X*w), int(p.Y*h))
			gocv.Circle(frame, pt, 4, toneColors[ToneReady], -1)
		}
	}

	if overlay.Text != "" {
		gocv.PutText(frame, overlay.Text, image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, c, 2)
	}
}
