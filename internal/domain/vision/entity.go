package vision

import (
	"encoding/json"
	"fmt"
)

// Position enum: horizontal placement of an object in the frame
type Position string

const (
	PositionLeft   Position = "left"
	PositionCenter Position = "center"
	PositionRight  Position = "right"
)

// PanicLevel enum: coarse bucket of the worst danger score in a scene
type PanicLevel string

const (
	PanicNone   PanicLevel = "none"
	PanicLow    PanicLevel = "low"
	PanicMedium PanicLevel = "medium"
	PanicHigh   PanicLevel = "high"
)

// BBox is a pixel-space bounding box, x1<x2 and y1<y2.
// On the wire it is the array [x1, y1, x2, y2] the detection model emits.
type BBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

func (b *BBox) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 4 {
		return fmt.Errorf("bbox must have 4 coordinates, got %d", len(coords))
	}
	b.X1, b.Y1, b.X2, b.Y2 = coords[0], coords[1], coords[2], coords[3]
	return nil
}

func (b BBox) Width() float64  { return b.X2 - b.X1 }
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// RawDetection is one box as returned by the detection model. Immutable.
type RawDetection struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

// EnrichedDetection is a RawDetection plus derived safety metadata.
// Never mutated after Score builds it.
type EnrichedDetection struct {
	RawDetection
	IsClose     bool     `json:"is_close"`
	IsDangerous bool     `json:"is_dangerous"`
	Position    Position `json:"position"`
	DangerScore float64  `json:"danger_score"`
}

// SceneAssessment aggregates the enriched detections of one frame.
type SceneAssessment struct {
	Detections []EnrichedDetection `json:"detections"`
	Panic      bool                `json:"panic"`
	PanicLevel PanicLevel          `json:"panic_level"`
}
