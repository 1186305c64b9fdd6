package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// createBinaryPLY builds a unit square in the XZ plane made of two triangles,
// with a per-vertex normal and an extra element the loader has to skip
func createBinaryPLY(t *testing.T, order binary.ByteOrder, format string) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	buf.WriteString("property float nx\n")
	buf.WriteString("property uchar red\n")
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("property ushort material\n")
	buf.WriteString("element edge 1\n")
	buf.WriteString("property int vertex1\n")
	buf.WriteString("property int vertex2\n")
	buf.WriteString("end_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}
	for _, v := range vertices {
		binary.Write(&buf, order, v)
		binary.Write(&buf, order, float32(0))
		binary.Write(&buf, order, uint8(255))
	}

	faces := [][3]int32{{0, 2, 1}, {0, 3, 2}}
	for _, f := range faces {
		binary.Write(&buf, order, uint8(3))
		binary.Write(&buf, order, f)
		binary.Write(&buf, order, uint16(7))
	}

	binary.Write(&buf, order, [2]int32{0, 1})
	return buf.Bytes()
}

func TestParsePLY_Binary(t *testing.T) {
	formats := []struct {
		name  string
		order binary.ByteOrder
	}{
		{"binary_little_endian", binary.LittleEndian},
		{"binary_big_endian", binary.BigEndian},
	}

	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			mesh, err := ParsePLY(bytes.NewReader(createBinaryPLY(t, f.order, f.name)))
			if err != nil {
				t.Fatalf("Failed to parse PLY: %v", err)
			}

			if len(mesh.Vertices) != 4 {
				t.Fatalf("Expected 4 vertices, got %d", len(mesh.Vertices))
			}
			if mesh.Vertices[2] != core.NewVec3(1, 0, 1) {
				t.Errorf("Expected vertex 2 at (1,0,1), got %v", mesh.Vertices[2])
			}
			expectedFaces := []int{0, 2, 1, 0, 3, 2}
			if len(mesh.Faces) != len(expectedFaces) {
				t.Fatalf("Expected %d face indices, got %d", len(expectedFaces), len(mesh.Faces))
			}
			for i, idx := range expectedFaces {
				if mesh.Faces[i] != idx {
					t.Errorf("Face index %d: expected %d, got %d", i, idx, mesh.Faces[i])
				}
			}
			if mesh.TriangleCount() != 2 {
				t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
			}
		})
	}
}

func TestParsePLY_ASCIIFan(t *testing.T) {
	input := `ply
format ascii 1.0
element vertex 5
property double x
property double y
property double z
element face 1
property list uchar uint vertex_indices
end_header
0 0 0
1 0 0
1.5 0 1
0.5 0 1.5
-0.5 0 1
5 0 1 2 3 4
`
	mesh, err := ParsePLY(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse PLY: %v", err)
	}
	if mesh.TriangleCount() != 3 {
		t.Fatalf("Expected pentagon to become 3 triangles, got %d", mesh.TriangleCount())
	}
	expected := []int{0, 1, 2, 0, 2, 3, 0, 3, 4}
	for i, idx := range expected {
		if mesh.Faces[i] != idx {
			t.Errorf("Face index %d: expected %d, got %d", i, idx, mesh.Faces[i])
		}
	}
	if mesh.Vertices[3] != core.NewVec3(0.5, 0, 1.5) {
		t.Errorf("Unexpected vertex 3: %v", mesh.Vertices[3])
	}
}

func TestParsePLY_Errors(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n"
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "obj\n"},
		{"no end_header", header},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"bad element count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n"},
		{"property before element", "ply\nformat ascii 1.0\nproperty float x\nend_header\n"},
		{"unsupported type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float128 x\nend_header\n"},
		{"truncated body", header + "end_header\n0 0 0\n1 0\n"},
		{"bad value", header + "end_header\n0 0 zero\n"},
		{"face index out of range", header + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 0 1\n3 0 1 7\n"},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 9000000000000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"huge face count", header + "element face 9000000000000000000\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 0 1\n3 0 1 2\n"},
		{"huge face list", header + "element face 1\nproperty list int int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 0 1\n2000000000 0 1 2\n"},
		{"face with two vertices", header + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 0 1\n2 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePLY(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadPLY(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square.ply")
	if err := os.WriteFile(path, createBinaryPLY(t, binary.LittleEndian, "binary_little_endian"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	mesh, err := LoadPLY(path)
	if err != nil {
		t.Fatalf("Failed to load PLY: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	if _, err := LoadPLY(filepath.Join(dir, "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadPLY(filepath.Join(dir, "square.obj")); err == nil {
		t.Error("Expected error for wrong extension")
	}
}
