package app

import (
	"errors"
	"fmt"
	"unicode"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
)

// ErrFrameGrab ends a frame loop when the camera stops delivering frames.
var ErrFrameGrab = errors.New("failed to grab frame")

// devices are the exclusively owned resources of one frame loop.
type devices struct {
	camera   capture.Camera
	detector detector.Detector
	display  capture.Display
}

// openDevices opens the camera and detector and creates the display
// window. Anything opened before a failure is closed again.
func (a *App) openDevices(title string) (*devices, error) {
	cam := a.newCamera()
	if err := cam.Open(); err != nil {
		if !errors.Is(err, capture.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
		}
		return nil, err
	}

	det, err := a.newDetector()
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("%w: hand detector: %v", capture.ErrDeviceUnavailable, err)
	}

	return &devices{
		camera:   cam,
		detector: det,
		display:  a.newDisplay(title),
	}, nil
}

// Close releases every device, logging failures.
func (d *devices) Close() {
	if err := d.display.Close(); err != nil {
		logger.Log().Warn("error closing display", zap.Error(err))
	}
	if err := d.detector.Close(); err != nil {
		logger.Log().Warn("error closing detector", zap.Error(err))
	}
	if err := d.camera.Close(); err != nil {
		logger.Log().Warn("error closing camera", zap.Error(err))
	}
}

// next reads one frame and detects hands in it. The caller closes the
// frame. A detector failure is logged and treated as no hand.
func (d *devices) next() (*gocv.Mat, []detector.HandLandmarks, error) {
	frame, err := d.camera.ReadFrame()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFrameGrab, err)
	}

	hands, err := d.detector.Detect(frame)
	if err != nil {
		logger.Log().Warn("hand detection failed", zap.Error(err))
		return frame, nil, nil
	}
	return frame, hands, nil
}

// show draws overlay on frame, presents it and polls the keyboard.
func (d *devices) show(frame *gocv.Mat, overlay capture.Overlay) int {
	d.display.Show(frame, overlay)
	frame.Close()
	return d.display.WaitKey(1)
}

// isKey reports whether the polled key matches the configured binding,
// ignoring case.
func isKey(key int, binding string) bool {
	if key == capture.KeyNone || binding == "" {
		return false
	}
	return unicode.ToLower(rune(key)) == unicode.ToLower(rune(binding[0]))
}
