package vision

import "strings"

// Canonical frame the detection model is calibrated against.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// Scoring constants. Fixed by design, not configurable per deployment.
const (
	closeThreshold = 0.35 // object spanning >35% of a frame dimension is close

	leftBound  = 0.33
	rightBound = 0.66

	dangerousWeight = 0.5
	closeWeight     = 0.3
	comboWeight     = 0.2
)

// dangerousClasses is the closed vocabulary of object classes treated as
// hazards. Lookup is case-insensitive.
var dangerousClasses = map[string]bool{
	"car":           true,
	"truck":         true,
	"bus":           true,
	"motorcycle":    true,
	"bicycle":       true,
	"train":         true,
	"fire hydrant":  true,
	"stop sign":     true,
	"traffic light": true,
	"knife":         true,
	"scissors":      true,
	"dog":           true,
	"horse":         true,
	"cow":           true,
	"bear":          true,
}

// IsDangerousClass reports whether a class name belongs to the hazard vocabulary.
func IsDangerousClass(name string) bool {
	return dangerousClasses[strings.ToLower(name)]
}

// Score enriches raw detections with proximity, position and danger metadata
// and derives the scene-wide panic signal. Pure function, no I/O.
//
// Per detection the score is binary-gated: dangerous-only 0.5, close-only 0.3,
// both 1.0, neither 0.
func Score(detections []RawDetection, frameWidth, frameHeight float64) SceneAssessment {
	enriched := make([]EnrichedDetection, 0, len(detections))
	hasDanger := false
	maxScore := 0.0

	for _, det := range detections {
		objWidth := det.BBox.Width() / frameWidth
		objHeight := det.BBox.Height() / frameHeight
		objSize := objWidth
		if objHeight > objSize {
			objSize = objHeight
		}

		centerX := (det.BBox.X1 + det.BBox.X2) / 2 / frameWidth
		position := PositionCenter
		if centerX < leftBound {
			position = PositionLeft
		} else if centerX > rightBound {
			position = PositionRight
		}

		isClose := objSize > closeThreshold
		isDangerous := IsDangerousClass(det.ClassName)

		score := 0.0
		if isDangerous {
			score += dangerousWeight
		}
		if isClose {
			score += closeWeight
		}
		if isDangerous && isClose {
			score += comboWeight
			hasDanger = true
		}
		if score > maxScore {
			maxScore = score
		}

		enriched = append(enriched, EnrichedDetection{
			RawDetection: det,
			IsClose:      isClose,
			IsDangerous:  isDangerous,
			Position:     position,
			DangerScore:  score,
		})
	}

	return SceneAssessment{
		Detections: enriched,
		Panic:      hasDanger,
		PanicLevel: levelForScore(maxScore),
	}
}

func levelForScore(maxScore float64) PanicLevel {
	switch {
	case maxScore >= 0.8:
		return PanicHigh
	case maxScore >= 0.5:
		return PanicMedium
	case maxScore >= 0.3:
		return PanicLow
	default:
		return PanicNone
	}
}
