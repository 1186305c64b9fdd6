// Package loaders reads mesh files that can be used as paintable surfaces.
package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-surface-scatter/pkg/core"
)

// Mesh is indexed triangle geometry, three face indices per triangle
type Mesh struct {
	Vertices []core.Vec3
	Faces    []int
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Faces) / 3
}

const (
	// maxPrealloc bounds slice capacity taken from header counts; larger
	// meshes still load, they just grow as data is read
	maxPrealloc = 1 << 16
	// maxListLength bounds the vertex count of a single face
	maxListLength = 1 << 16
)

// plyElement is one "element" block of the header
type plyElement struct {
	name  string
	count int
	props []plyProperty
}

// plyProperty is a property definition in the PLY header
type plyProperty struct {
	name      string
	dataType  string
	isList    bool
	countType string // type of the list length for list properties
}

// LoadPLY loads vertex positions and faces from a PLY file. Faces with more
// than three vertices are triangulated as fans.
func LoadPLY(filename string) (*Mesh, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".ply") {
		return nil, fmt.Errorf("invalid file type: only .ply files are allowed")
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ParsePLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ParsePLY reads a PLY stream in ascii, binary_little_endian or
// binary_big_endian format
func ParsePLY(r io.Reader) (*Mesh, error) {
	reader := bufio.NewReader(r)

	format, elements, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch format {
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &asciiReader{scanner: scanner}
	case "binary_little_endian":
		values = &binaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", format)
	}

	mesh := &Mesh{}
	for _, el := range elements {
		switch el.name {
		case "vertex":
			err = readVertices(values, el, mesh)
		case "face":
			err = readFaces(values, el, mesh)
		default:
			err = skipElement(values, el)
		}
		if err != nil {
			return nil, err
		}
	}

	for i, idx := range mesh.Faces {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("face %d references vertex %d, mesh has %d", i/3, idx, len(mesh.Vertices))
		}
	}
	return mesh, nil
}

// parsePLYHeader reads up to end_header and returns the format and elements
func parsePLYHeader(reader *bufio.Reader) (string, []plyElement, error) {
	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return "", nil, fmt.Errorf("missing ply magic number")
	}

	var format string
	var elements []plyElement
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if format == "" {
				return "", nil, fmt.Errorf("missing format line")
			}
			return format, elements, nil
		case "format":
			if len(parts) < 3 {
				return "", nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			format = parts[1]
		case "comment", "obj_info":
			// Ignore
		case "element":
			if len(parts) < 3 {
				return "", nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return "", nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			elements = append(elements, plyElement{name: parts[1], count: count})
		case "property":
			if len(elements) == 0 {
				return "", nil, fmt.Errorf("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return "", nil, err
			}
			el := &elements[len(elements)-1]
			el.props = append(el.props, prop)
		default:
			return "", nil, fmt.Errorf("unknown header keyword: %s", parts[0])
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("invalid list property definition")
		}
		if typeSize(parts[1]) == 0 || typeSize(parts[2]) == 0 {
			return plyProperty{}, fmt.Errorf("unsupported list types: %s %s", parts[1], parts[2])
		}
		return plyProperty{isList: true, countType: parts[1], dataType: parts[2], name: parts[3]}, nil
	}
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("invalid property definition")
	}
	if typeSize(parts[0]) == 0 {
		return plyProperty{}, fmt.Errorf("unsupported data type: %s", parts[0])
	}
	return plyProperty{dataType: parts[0], name: parts[1]}, nil
}

func readVertices(values valueReader, el plyElement, mesh *Mesh) error {
	axis := map[string]int{"x": 0, "y": 1, "z": 2}
	mesh.Vertices = make([]core.Vec3, 0, min(el.count, maxPrealloc))

	for i := 0; i < el.count; i++ {
		var pos [3]float64
		for _, prop := range el.props {
			if prop.isList {
				if err := skipList(values, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := values.scalar(prop.dataType)
			if err != nil {
				return fmt.Errorf("vertex %d property %s: %w", i, prop.name, err)
			}
			if a, ok := axis[prop.name]; ok {
				pos[a] = v
			}
		}
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(pos[0], pos[1], pos[2]))
	}
	return nil
}

func readFaces(values valueReader, el plyElement, mesh *Mesh) error {
	mesh.Faces = make([]int, 0, min(el.count, maxPrealloc)*3)

	for i := 0; i < el.count; i++ {
		for _, prop := range el.props {
			if !prop.isList || (prop.name != "vertex_indices" && prop.name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}

			n, err := listLength(values, prop)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			if n < 3 {
				return fmt.Errorf("face %d has %d vertices, need at least 3", i, n)
			}
			indices := make([]int, n)
			for j := range indices {
				v, err := values.scalar(prop.dataType)
				if err != nil {
					return fmt.Errorf("face %d index %d: %w", i, j, err)
				}
				indices[j] = int(v)
			}
			for j := 1; j+1 < n; j++ {
				mesh.Faces = append(mesh.Faces, indices[0], indices[j], indices[j+1])
			}
		}
	}
	return nil
}

func skipElement(values valueReader, el plyElement) error {
	for i := 0; i < el.count; i++ {
		for _, prop := range el.props {
			if err := skipProperty(values, prop); err != nil {
				return fmt.Errorf("%s %d: %w", el.name, i, err)
			}
		}
	}
	return nil
}

func skipProperty(values valueReader, prop plyProperty) error {
	if prop.isList {
		return skipList(values, prop)
	}
	_, err := values.scalar(prop.dataType)
	return err
}

func skipList(values valueReader, prop plyProperty) error {
	n, err := listLength(values, prop)
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		if _, err := values.scalar(prop.dataType); err != nil {
			return err
		}
	}
	return nil
}

func listLength(values valueReader, prop plyProperty) (int, error) {
	v, err := values.scalar(prop.countType)
	if err != nil {
		return 0, fmt.Errorf("list %s length: %w", prop.name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("list %s has negative length", prop.name)
	}
	if v > maxListLength {
		return 0, fmt.Errorf("list %s length %g exceeds %d", prop.name, v, maxListLength)
	}
	return int(v), nil
}

// typeSize returns the size in bytes of a PLY data type, 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// valueReader yields the next scalar of the body as float64
type valueReader interface {
	scalar(dataType string) (float64, error)
}

type asciiReader struct {
	scanner *bufio.Scanner
}

func (a *asciiReader) scalar(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return v, nil
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) scalar(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}
