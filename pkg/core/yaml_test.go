package core

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type transformDoc struct {
	Position Vec3 `yaml:"position"`
	Rotation Quat `yaml:"rotation"`
}

func TestYAML_VecAndQuatRoundTrip(t *testing.T) {
	in := transformDoc{
		Position: NewVec3(1.5, -2, 0.25),
		Rotation: QuatEulerDegrees(NewVec3(0, 90, 0)),
	}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "position: [1.5, -2, 0.25]") {
		t.Errorf("Expected flow sequence for position, got:\n%s", data)
	}

	var out transformDoc
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Position != in.Position {
		t.Errorf("Position: expected %v, got %v", in.Position, out.Position)
	}
	if out.Rotation != in.Rotation {
		t.Errorf("Rotation: expected %v, got %v", in.Rotation, out.Rotation)
	}
}

func TestYAML_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"short vec3", "position: [1, 2]\n"},
		{"long quat", "rotation: [0, 0, 0, 1, 5]\n"},
		{"not a sequence", "position: up\n"},
		{"non numeric", "position: [a, b, c]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out transformDoc
			if err := yaml.Unmarshal([]byte(tt.doc), &out); err == nil {
				t.Errorf("Expected error decoding %q", tt.doc)
			}
		})
	}
}

func TestYAML_BlockSequence(t *testing.T) {
	var out transformDoc
	doc := "position:\n  - 1\n  - 2\n  - 3\n"
	if err := yaml.Unmarshal([]byte(doc), &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Position != NewVec3(1, 2, 3) {
		t.Errorf("Expected (1, 2, 3), got %v", out.Position)
	}
}
