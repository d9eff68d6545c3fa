package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestFeatures(t *testing.T) {
	t.Run("interleaves x and y in landmark order", func(t *testing.T) {
		hand := NewHandLandmarks()
		for i := range hand.Points {
			hand.Points[i] = Point3D{X: float64(i) / 100, Y: float64(i)/100 + 0.5, Z: 9}
		}

		features, err := Features(&hand)
		if err != nil {
			t.Fatalf("Features() error = %v", err)
		}
		if len(features) != NumFeatures {
			t.Fatalf("expected %d features, got %d", NumFeatures, len(features))
		}

		for i := 0; i < NumLandmarks; i++ {
			if math.Abs(features[2*i]-hand.Points[i].X) > epsilon {
				t.Errorf("x%d = %f, want %f", i, features[2*i], hand.Points[i].X)
			}
			if math.Abs(features[2*i+1]-hand.Points[i].Y) > epsilon {
				t.Errorf("y%d = %f, want %f", i, features[2*i+1], hand.Points[i].Y)
			}
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		a, _ := Features(&hand)
		b, _ := Features(&hand)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("feature %d differs: %f != %f", i, a[i], b[i])
			}
		}
	})

	t.Run("ignores depth and score", func(t *testing.T) {
		a := ThumbsUpLandmarks()
		b := a.Clone()
		b.Score = 0.1
		for i := range b.Points {
			b.Points[i].Z = 42
		}

		fa, _ := Features(&a)
		fb, _ := Features(&b)
		for i := range fa {
			if fa[i] != fb[i] {
				t.Fatalf("feature %d changed with depth/score", i)
			}
		}
	})

	t.Run("short detection is rejected", func(t *testing.T) {
		hand := HandLandmarks{Points: make([]Point3D, 20)}

		_, err := Features(&hand)
		if !errors.Is(err, ErrLandmarkCount) {
			t.Errorf("expected ErrLandmarkCount, got %v", err)
		}
	})

	t.Run("nil hand is rejected", func(t *testing.T) {
		_, err := Features(nil)
		if !errors.Is(err, ErrLandmarkCount) {
			t.Errorf("expected ErrLandmarkCount, got %v", err)
		}
	})
}

func TestJitter(t *testing.T) {
	base := FistLandmarks()

	a := Jitter(base, 7, 0.01)
	b := Jitter(base, 7, 0.01)
	c := Jitter(base, 8, 0.01)

	same := true
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("same seed produced different point %d", i)
		}
		if a.Points[i] != c.Points[i] {
			same = false
		}
		if math.Abs(a.Points[i].X-base.Points[i].X) > 0.01+epsilon {
			t.Errorf("point %d moved further than the jitter amount", i)
		}
	}
	if same {
		t.Error("different seeds produced identical hands")
	}
	if base.Points[0] != FistLandmarks().Points[0] {
		t.Error("Jitter modified its input")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()

		expectedHands := []HandLandmarks{
			ThumbsUpLandmarks(),
			OpenPalmLandmarks(),
		}
		mock.SetHands(expectedHands)

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("plays back a sequence then falls back", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks()})
		mock.SetSequence([][]HandLandmarks{nil, {OpenPalmLandmarks()}})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 {
			t.Errorf("expected no hands on first call, got %d", len(first))
		}
		if len(second) != 1 || second[0].Points[ThumbTip] != OpenPalmLandmarks().Points[ThumbTip] {
			t.Error("expected open palm on second call")
		}
		if len(third) != 1 || third[0].Points[ThumbTip] != FistLandmarks().Points[ThumbTip] {
			t.Error("expected fallback fist on third call")
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		mock := NewMockDetector()

		err := mock.Close()

		if err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestThumbsUpLandmarks(t *testing.T) {
	landmarks := ThumbsUpLandmarks()

	t.Run("has correct handedness and score", func(t *testing.T) {
		if landmarks.Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", landmarks.Handedness)
		}
		if landmarks.Score < 0.9 {
			t.Errorf("expected score >= 0.9, got %f", landmarks.Score)
		}
	})

	t.Run("thumb is extended upward", func(t *testing.T) {
		// Thumb tip should be above (lower Y) than thumb MCP
		if landmarks.Points[ThumbTip].Y >= landmarks.Points[ThumbMCP].Y {
			t.Error("thumb tip should be above thumb MCP (lower Y value)")
		}

		// Thumb tip should be above thumb IP
		if landmarks.Points[ThumbTip].Y >= landmarks.Points[ThumbIP].Y {
			t.Error("thumb tip should be above thumb IP (lower Y value)")
		}
	})

	t.Run("other fingers are curled", func(t *testing.T) {
		// For curled fingers, the tip should be close to or below the MCP in Y
		// and generally curled back toward the palm

		// Index finger
		indexExtension := landmarks.Points[IndexMCP].Y - landmarks.Points[IndexTip].Y
		if indexExtension > 0.15 {
			t.Errorf("index finger appears extended (extension: %f), should be curled", indexExtension)
		}

		// Middle finger
		middleExtension := landmarks.Points[MiddleMCP].Y - landmarks.Points[MiddleTip].Y
		if middleExtension > 0.15 {
			t.Errorf("middle finger appears extended (extension: %f), should be curled", middleExtension)
		}

		// Ring finger
		ringExtension := landmarks.Points[RingMCP].Y - landmarks.Points[RingTip].Y
		if ringExtension > 0.15 {
			t.Errorf("ring finger appears extended (extension: %f), should be curled", ringExtension)
		}

		// Pinky finger
		pinkyExtension := landmarks.Points[PinkyMCP].Y - landmarks.Points[PinkyTip].Y
		if pinkyExtension > 0.15 {
			t.Errorf("pinky finger appears extended (extension: %f), should be curled", pinkyExtension)
		}
	})
}

func TestOpenPalmLandmarks(t *testing.T) {
	landmarks := OpenPalmLandmarks()

	t.Run("has correct handedness and score", func(t *testing.T) {
		if landmarks.Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", landmarks.Handedness)
		}
		if landmarks.Score < 0.9 {
			t.Errorf("expected score >= 0.9, got %f", landmarks.Score)
		}
	})

	t.Run("all fingers are extended", func(t *testing.T) {
		// For extended fingers, the tip should be significantly above (lower Y) the MCP
		minExtension := 0.2 // minimum expected extension

		// Index finger
		indexExtension := landmarks.Points[IndexMCP].Y - landmarks.Points[IndexTip].Y
		if indexExtension < minExtension {
			t.Errorf("index finger not extended enough (extension: %f), expected >= %f", indexExtension, minExtension)
		}

		// Middle finger
		middleExtension := landmarks.Points[MiddleMCP].Y - landmarks.Points[MiddleTip].Y
		if middleExtension < minExtension {
			t.Errorf("middle finger not extended enough (extension: %f), expected >= %f", middleExtension, minExtension)
		}

		// Ring finger
		ringExtension := landmarks.Points[RingMCP].Y - landmarks.Points[RingTip].Y
		if ringExtension < minExtension {
			t.Errorf("ring finger not extended enough (extension: %f), expected >= %f", ringExtension, minExtension)
		}

		// Pinky finger
		pinkyExtension := landmarks.Points[PinkyMCP].Y - landmarks.Points[PinkyTip].Y
		if pinkyExtension < minExtension {
			t.Errorf("pinky finger not extended enough (extension: %f), expected >= %f", pinkyExtension, minExtension)
		}
	})

	t.Run("thumb is extended to the side", func(t *testing.T) {
		// Thumb should be extended away from the palm (higher X for right hand)
		if landmarks.Points[ThumbTip].X <= landmarks.Points[ThumbMCP].X {
			t.Error("thumb tip should be to the right of thumb MCP (extended outward)")
		}
	})

	t.Run("fingers are properly ordered left to right", func(t *testing.T) {
		// For a right hand palm facing forward, fingers should be ordered
		// from left to right: pinky, ring, middle, index, thumb
		if landmarks.Points[PinkyMCP].X >= landmarks.Points[RingMCP].X {
			t.Error("pinky should be to the left of ring finger")
		}
		if landmarks.Points[RingMCP].X >= landmarks.Points[MiddleMCP].X {
			t.Error("ring should be to the left of middle finger")
		}
		if landmarks.Points[MiddleMCP].X >= landmarks.Points[IndexMCP].X {
			t.Error("middle should be to the left of index finger")
		}
	})
}
