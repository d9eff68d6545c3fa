// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// NumFeatures is the length of a feature vector: an x and a y per landmark.
const NumFeatures = NumLandmarks * 2

// ErrLandmarkCount is returned when a detection does not carry exactly
// NumLandmarks points.
var ErrLandmarkCount = errors.New("unexpected landmark count")

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the image size; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the landmarks of one detected hand.
// A well-formed detection has exactly NumLandmarks points.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// NewHandLandmarks returns a hand with NumLandmarks zero points.
func NewHandLandmarks() HandLandmarks {
	return HandLandmarks{Points: make([]Point3D, NumLandmarks)}
}

// Features flattens the hand into the classifier input layout
// x0,y0,x1,y1,...,x20,y20. Depth and detection score are dropped.
func Features(h *HandLandmarks) ([]float64, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: no hand", ErrLandmarkCount)
	}
	if len(h.Points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrLandmarkCount, len(h.Points), NumLandmarks)
	}

	features := make([]float64, 0, NumFeatures)
	for _, p := range h.Points {
		features = append(features, p.X, p.Y)
	}
	return features, nil
}

// Clone returns a deep copy of the hand.
func (h HandLandmarks) Clone() HandLandmarks {
	out := h
	out.Points = append([]Point3D(nil), h.Points...)
	return out
}
