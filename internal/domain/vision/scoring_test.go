package vision

import (
	"math"
	"testing"
)

func det(name string, x1, y1, x2, y2 float64) RawDetection {
	return RawDetection{
		ClassName:  name,
		Confidence: 0.9,
		BBox:       BBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
	}
}

func TestScore_EmptyScene(t *testing.T) {
	result := Score(nil, FrameWidth, FrameHeight)

	if result.Panic {
		t.Error("Expected panic=false for empty scene")
	}
	if result.PanicLevel != PanicNone {
		t.Errorf("Expected panic_level=none, got %s", result.PanicLevel)
	}
	if len(result.Detections) != 0 {
		t.Errorf("Expected no detections, got %d", len(result.Detections))
	}
}

func TestScore_CloseDangerousCar(t *testing.T) {
	// 256px wide box on a 640x480 frame: obj_width=0.4, obj_height~0.417
	result := Score([]RawDetection{det("car", 0, 100, 256, 300)}, FrameWidth, FrameHeight)

	d := result.Detections[0]
	if !d.IsClose {
		t.Error("Expected is_close=true for object spanning ~0.417 of frame height")
	}
	if !d.IsDangerous {
		t.Error("Expected is_dangerous=true for car")
	}
	if d.Position != PositionLeft {
		t.Errorf("Expected position=left (center_x=0.2), got %s", d.Position)
	}
	if d.DangerScore != 1.0 {
		t.Errorf("Expected danger_score=1.0, got %f", d.DangerScore)
	}
	if !result.Panic {
		t.Error("Expected panic=true")
	}
	if result.PanicLevel != PanicHigh {
		t.Errorf("Expected panic_level=high, got %s", result.PanicLevel)
	}
}

func TestScore_FarPerson(t *testing.T) {
	// obj_width=40/640=0.0625, obj_height=100/480~0.208
	result := Score([]RawDetection{det("person", 300, 100, 340, 200)}, FrameWidth, FrameHeight)

	d := result.Detections[0]
	if d.IsClose {
		t.Error("Expected is_close=false for obj_size~0.208")
	}
	if d.IsDangerous {
		t.Error("Expected is_dangerous=false for person")
	}
	if d.Position != PositionCenter {
		t.Errorf("Expected position=center, got %s", d.Position)
	}
	if d.DangerScore != 0 {
		t.Errorf("Expected danger_score=0, got %f", d.DangerScore)
	}
	if result.Panic {
		t.Error("Expected panic=false")
	}
	if result.PanicLevel != PanicNone {
		t.Errorf("Expected panic_level=none, got %s", result.PanicLevel)
	}
}

func TestScore_CloseThresholdBoundary(t *testing.T) {
	// obj_width exactly 0.35 of frame width: NOT close (strict inequality)
	exact := det("person", 0, 0, 0.35*FrameWidth, 10)
	result := Score([]RawDetection{exact}, FrameWidth, FrameHeight)
	if result.Detections[0].IsClose {
		t.Error("obj_size == 0.35 must not be close")
	}

	// just over the threshold: close
	over := det("person", 0, 0, 0.350001*FrameWidth, 10)
	result = Score([]RawDetection{over}, FrameWidth, FrameHeight)
	if !result.Detections[0].IsClose {
		t.Error("obj_size just above 0.35 must be close")
	}
}

func TestScore_PositionBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		centerX float64
		want    Position
	}{
		{"well left", 0.2, PositionLeft},
		{"left boundary", 0.33, PositionCenter},
		{"just right of left boundary", 0.331, PositionCenter},
		{"right boundary", 0.66, PositionCenter},
		{"just past right boundary", 0.661, PositionRight},
		{"well right", 0.9, PositionRight},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// zero-width box centered at centerX keeps obj_size at 0
			x := tc.centerX * FrameWidth
			result := Score([]RawDetection{det("person", x, 0, x, 0)}, FrameWidth, FrameHeight)
			if got := result.Detections[0].Position; got != tc.want {
				t.Errorf("center_x=%v: expected %s, got %s", tc.centerX, tc.want, got)
			}
		})
	}
}

func TestScore_AchievableScoreSet(t *testing.T) {
	detections := []RawDetection{
		det("person", 0, 0, 10, 10),               // neither
		det("person", 0, 0, 300, 300),             // close only
		det("dog", 0, 0, 10, 10),                  // dangerous only
		det("truck", 0, 0, 400, 400),              // both
	}
	result := Score(detections, FrameWidth, FrameHeight)

	allowed := map[float64]bool{0: true, 0.3: true, 0.5: true, 1.0: true}
	for i, d := range result.Detections {
		if !allowed[math.Round(d.DangerScore*10)/10] {
			t.Errorf("detection %d: danger_score %f outside {0, 0.3, 0.5, 1.0}", i, d.DangerScore)
		}
	}

	want := []float64{0, 0.3, 0.5, 1.0}
	for i, w := range want {
		if result.Detections[i].DangerScore != w {
			t.Errorf("detection %d: expected score %v, got %v", i, w, result.Detections[i].DangerScore)
		}
	}
}

func TestScore_PanicLevels(t *testing.T) {
	cases := []struct {
		name       string
		detections []RawDetection
		panic      bool
		level      PanicLevel
	}{
		{"close only", []RawDetection{det("person", 0, 0, 300, 300)}, false, PanicLow},
		{"dangerous only", []RawDetection{det("dog", 0, 0, 10, 10)}, false, PanicMedium},
		{"both", []RawDetection{det("bus", 0, 0, 400, 400)}, true, PanicHigh},
		{"neither", []RawDetection{det("chair", 0, 0, 10, 10)}, false, PanicNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Score(tc.detections, FrameWidth, FrameHeight)
			if result.Panic != tc.panic {
				t.Errorf("expected panic=%v, got %v", tc.panic, result.Panic)
			}
			if result.PanicLevel != tc.level {
				t.Errorf("expected panic_level=%s, got %s", tc.level, result.PanicLevel)
			}
		})
	}
}

func TestScore_PanicRequiresDangerousAndClose(t *testing.T) {
	// scene holds a dangerous-far object and a close-harmless one; neither
	// satisfies the conjunction, so no panic
	result := Score([]RawDetection{
		det("knife", 0, 0, 10, 10),
		det("person", 0, 0, 400, 400),
	}, FrameWidth, FrameHeight)

	if result.Panic {
		t.Error("panic requires a single detection that is both dangerous and close")
	}
	if result.PanicLevel != PanicMedium {
		t.Errorf("max score 0.5 (dangerous-only) should map to medium, got %s", result.PanicLevel)
	}
}

func TestIsDangerousClass_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"Car", "STOP SIGN", "fire hydrant", "Dog"} {
		if !IsDangerousClass(name) {
			t.Errorf("Expected %q to be dangerous", name)
		}
	}
	for _, name := range []string{"person", "chair", "cat", ""} {
		if IsDangerousClass(name) {
			t.Errorf("Expected %q to be harmless", name)
		}
	}
}

func TestScore_PreservesDetectionOrder(t *testing.T) {
	detections := []RawDetection{
		det("person", 0, 0, 10, 10),
		det("car", 20, 0, 30, 10),
		det("dog", 40, 0, 50, 10),
	}
	result := Score(detections, FrameWidth, FrameHeight)

	for i, d := range result.Detections {
		if d.ClassName != detections[i].ClassName {
			t.Errorf("order changed at %d: expected %s, got %s", i, detections[i].ClassName, d.ClassName)
		}
	}
}
