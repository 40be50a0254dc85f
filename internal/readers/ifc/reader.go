// Package ifc reads IFC building models (ISO-10303-21 STEP, optionally
// zipped) into a component summary and a typed component side-list.
package ifc

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FormatReader = (*Reader)(nil)

// Summary limits.
const (
	DefaultMaxSampleComponents = 200
	DefaultMaxTypeCounts       = 30
)

// magic prefixes
var (
	stepMagic = []byte("ISO-10303-21")
	zipMagic  = []byte("PK\x03\x04")
)

// knownProducts are IfcProduct subtypes accepted even without a placement.
var knownProducts = map[string]bool{
	"IFCWALL": true, "IFCWALLSTANDARDCASE": true, "IFCSLAB": true, "IFCBEAM": true,
	"IFCCOLUMN": true, "IFCDOOR": true, "IFCWINDOW": true, "IFCSTAIR": true,
	"IFCSTAIRFLIGHT": true, "IFCROOF": true, "IFCRAILING": true, "IFCPLATE": true,
	"IFCMEMBER": true, "IFCCOVERING": true, "IFCFOOTING": true, "IFCPILE": true,
	"IFCRAMP": true, "IFCCURTAINWALL": true, "IFCBUILDINGELEMENTPROXY": true,
	"IFCFURNISHINGELEMENT": true, "IFCFLOWTERMINAL": true, "IFCFLOWSEGMENT": true,
	"IFCFLOWFITTING": true, "IFCFLOWCONTROLLER": true, "IFCDISTRIBUTIONELEMENT": true,
	"IFCSITE": true, "IFCBUILDING": true, "IFCBUILDINGSTOREY": true, "IFCSPACE": true,
	"IFCOPENINGELEMENT": true,
}

// Reader handles IFC models.
type Reader struct {
	maxSamples int
	maxTypes   int
}

// New creates a new IFC reader.
func New() *Reader {
	return &Reader{
		maxSamples: DefaultMaxSampleComponents,
		maxTypes:   DefaultMaxTypeCounts,
	}
}

// SourceTypes returns the source types this reader handles.
func (r *Reader) SourceTypes() []string {
	return []string{"ifc", "ifczip"}
}

// Read parses the model at path.
func (r *Reader) Read(ctx context.Context, filePath string) (*driven.ReadResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read ifc: %w", domain.ErrInput, err)
	}
	if bytes.HasPrefix(data, zipMagic) {
		if data, err = unzipModel(data); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	components, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &driven.ReadResult{
		Text:       Summarize(components, r.maxTypes, r.maxSamples),
		Components: components,
	}, nil
}

// unzipModel returns the first .ifc member of an ifczip archive.
func unzipModel(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open ifczip: %w", domain.ErrInput, err)
	}
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".ifc") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInput, f.Name, err)
		}
		defer rc.Close()
		member, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInput, f.Name, err)
		}
		return member, nil
	}
	return nil, fmt.Errorf("%w: ifczip contains no .ifc model", domain.ErrInput)
}

// Parse extracts the product components of a STEP-encoded IFC model in
// file order. Products without a GlobalId are skipped.
func Parse(data []byte) ([]domain.IfcComponent, error) {
	if !bytes.Contains(data[:min(len(data), 1024)], stepMagic) {
		return nil, fmt.Errorf("%w: not an ISO-10303-21 file", domain.ErrInput)
	}
	m, err := parseSTEP(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse ifc: %w", domain.ErrInput, err)
	}

	psets := m.propertySets()
	components := make([]domain.IfcComponent, 0)
	for _, id := range m.order {
		e := m.entities[id]
		if !m.isProduct(e) {
			continue
		}
		globalID, _ := e.Args[0].(string)
		if globalID == "" {
			continue
		}
		name, _ := e.Args[2].(string)
		sets := psets[id]
		if sets == nil {
			sets = map[string]map[string]any{}
		}
		components = append(components, domain.IfcComponent{
			GlobalID:     globalID,
			Name:         name,
			Type:         e.Type,
			PropertySets: sets,
		})
	}
	return components, nil
}

// isProduct reports whether e is an IfcProduct: a rooted object whose
// ObjectPlacement or Representation points at placement or shape data.
func (m *model) isProduct(e *entity) bool {
	if strings.HasPrefix(e.Type, "IFCREL") || strings.HasSuffix(e.Type, "TYPE") {
		return false
	}
	if len(e.Args) < 7 {
		return false
	}
	if _, ok := e.Args[0].(string); !ok {
		return false
	}
	if knownProducts[e.Type] {
		return true
	}
	if placement := m.get(e.Args[5]); placement != nil {
		return placement.Type == "IFCLOCALPLACEMENT" || placement.Type == "IFCGRIDPLACEMENT"
	}
	if shape := m.get(e.Args[6]); shape != nil {
		return shape.Type == "IFCPRODUCTDEFINITIONSHAPE"
	}
	return false
}

// propertySets maps product id to set name to property values, following
// IFCRELDEFINESBYPROPERTIES to property sets and element quantities.
func (m *model) propertySets() map[int64]map[string]map[string]any {
	out := make(map[int64]map[string]map[string]any)
	for _, id := range m.order {
		rel := m.entities[id]
		if rel.Type != "IFCRELDEFINESBYPROPERTIES" || len(rel.Args) < 6 {
			continue
		}
		def := m.get(rel.Args[5])
		if def == nil {
			continue
		}
		name, values := m.definition(def)
		if name == "" {
			continue
		}
		related, _ := rel.Args[4].([]any)
		for _, obj := range related {
			r, ok := obj.(ref)
			if !ok {
				continue
			}
			if out[int64(r)] == nil {
				out[int64(r)] = make(map[string]map[string]any)
			}
			out[int64(r)][name] = values
		}
	}
	return out
}

func (m *model) definition(def *entity) (string, map[string]any) {
	var items []any
	switch def.Type {
	case "IFCPROPERTYSET":
		if len(def.Args) < 5 {
			return "", nil
		}
		items, _ = def.Args[4].([]any)
	case "IFCELEMENTQUANTITY":
		if len(def.Args) < 6 {
			return "", nil
		}
		items, _ = def.Args[5].([]any)
	default:
		return "", nil
	}
	name, _ := def.Args[2].(string)

	values := make(map[string]any, len(items))
	for _, item := range items {
		prop := m.get(item)
		if prop == nil || len(prop.Args) == 0 {
			continue
		}
		key, _ := prop.Args[0].(string)
		if key == "" {
			continue
		}
		switch {
		case prop.Type == "IFCPROPERTYSINGLEVALUE" && len(prop.Args) > 2:
			values[key] = plain(prop.Args[2])
		case prop.Type == "IFCPROPERTYENUMERATEDVALUE" && len(prop.Args) > 2:
			values[key] = plain(prop.Args[2])
		case strings.HasPrefix(prop.Type, "IFCQUANTITY") && len(prop.Args) > 3:
			values[key] = plain(prop.Args[3])
		}
	}
	return name, values
}

// plain converts a STEP value into a JSON-compatible value.
func plain(v any) any {
	switch t := v.(type) {
	case string, float64:
		return t
	case enum:
		switch strings.ToUpper(string(t)) {
		case "T", "TRUE":
			return true
		case "F", "FALSE":
			return false
		case "U", "UNKNOWN":
			return nil
		}
		return string(t)
	case typed:
		if len(t.Args) == 1 {
			return plain(t.Args[0])
		}
		return plain(t.Args)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	}
	return nil
}

// Summarize renders the component type counts followed by sample lines.
func Summarize(components []domain.IfcComponent, maxTypes, maxSamples int) string {
	counts := make(map[string]int)
	var types []string
	for _, c := range components {
		if counts[c.Type] == 0 {
			types = append(types, c.Type)
		}
		counts[c.Type]++
	}
	sort.SliceStable(types, func(i, j int) bool { return counts[types[i]] > counts[types[j]] })
	if len(types) > maxTypes {
		types = types[:maxTypes]
	}

	lines := []string{"IFC Component Type Counts:"}
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("- %s: %d", t, counts[t]))
	}

	lines = append(lines, "\nSample Components:")
	for i, c := range components {
		if i >= maxSamples {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | Psets: %s", c.Type, c.Name, c.GlobalID, setNames(c.PropertySets)))
	}
	return strings.Join(lines, "\n")
}

func setNames(sets map[string]map[string]any) string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, "'"+name+"'")
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
