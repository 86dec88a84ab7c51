package geometry

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFormatTransform_Identity(t *testing.T) {
	result := FormatTransform(Identity(), r3.Vec{X: 10.5, Y: 20.75, Z: 5.25})
	expected := "1.00000000 0.00000000 0.00000000 0.00000000 1.00000000 0.00000000 0.00000000 0.00000000 1.00000000 10.5000 20.7500 5.2500"

	if result != expected {
		t.Errorf("FormatTransform() = %v, want %v", result, expected)
	}
}

func TestFormatTransform_45DegreeZ(t *testing.T) {
	result := FormatTransform(RotationMatrixZ(math.Pi/4), r3.Vec{})
	parts := strings.Fields(result)

	if len(parts) != 12 {
		t.Fatalf("Expected 12 values, got %d", len(parts))
	}

	// For 45° Z rotation, m11 and m22 should be cos(45°) ≈ 0.707,
	// m12 should be -sin(45°) and m21 should be sin(45°)
	c := math.Cos(math.Pi / 4)
	want := map[int]float64{0: c, 1: -c, 3: c, 4: c, 8: 1}
	for idx, w := range want {
		got, err := strconv.ParseFloat(parts[idx], 64)
		if err != nil {
			t.Fatalf("parts[%d] = %q is not a float: %v", idx, parts[idx], err)
		}
		if math.Abs(got-w) > 0.0001 {
			t.Errorf("parts[%d] = %v, want ≈%v", idx, got, w)
		}
	}

	if parts[11] != "0.0000" {
		t.Errorf("Translation Z should be 0.0000, got %v", parts[11])
	}
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    r3.Vec
		wantErr bool
	}{
		{"commas", "1,2,3", r3.Vec{X: 1, Y: 2, Z: 3}, false},
		{"spaces", "1.5 -2 3e2", r3.Vec{X: 1.5, Y: -2, Z: 300}, false},
		{"mixed", "0, 0,  -5", r3.Vec{Z: -5}, false},
		{"too few", "1,2", r3.Vec{}, true},
		{"too many", "1,2,3,4", r3.Vec{}, true},
		{"not a number", "1,b,3", r3.Vec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVector(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVector(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseVector(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculateBoundingBox(t *testing.T) {
	points := []r3.Vec{{X: 1, Y: -2, Z: 3}, {X: -4, Y: 5, Z: 0}, {X: 2, Y: 0, Z: -1}}

	bbox, err := CalculateBoundingBox(points)
	if err != nil {
		t.Fatalf("CalculateBoundingBox() error = %v", err)
	}

	if bbox.Min != (r3.Vec{X: -4, Y: -2, Z: -1}) {
		t.Errorf("Min = %v", bbox.Min)
	}
	if bbox.Max != (r3.Vec{X: 2, Y: 5, Z: 3}) {
		t.Errorf("Max = %v", bbox.Max)
	}
	if bbox.Width() != 6 || bbox.Height() != 7 || bbox.Depth() != 4 {
		t.Errorf("dimensions = %v x %v x %v", bbox.Width(), bbox.Height(), bbox.Depth())
	}
	if bbox.Center() != (r3.Vec{X: -1, Y: 1.5, Z: 1}) {
		t.Errorf("Center = %v", bbox.Center())
	}

	if _, err := CalculateBoundingBox(nil); err == nil {
		t.Error("expected error for empty point set")
	}
}

func TestTransformPoints(t *testing.T) {
	points := []r3.Vec{{X: 1}, {Y: 1}}
	out := TransformPoints(points, RotationMatrixZ(math.Pi/2), r3.Vec{X: 1, Y: 1, Z: 1})

	want := []r3.Vec{{X: 1, Y: 2, Z: 1}, {X: 0, Y: 1, Z: 1}}
	for i := range want {
		if r3.Norm(r3.Sub(out[i], want[i])) > 1e-12 {
			t.Errorf("point %d = %v, want %v", i, out[i], want[i])
		}
	}
}
