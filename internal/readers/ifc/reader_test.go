package ifc

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

const sampleModel = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('plant.ifc','2024-01-01T00:00:00',(''),(''),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
/* ownership */
#1=IFCOWNERHISTORY($,$,$,.ADDED.,$,$,$,0);
#10=IFCLOCALPLACEMENT($,$);
#11=IFCPRODUCTDEFINITIONSHAPE($,$,());
#20=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',#1,'Wall A',$,$,#10,#11,'tag',.STANDARD.);
#21=IFCWALL('1kTvXnbbzCWw8lcMd1dR4o',#1,'Wall B',$,$,#10,#11,$,$);
#22=IFCDOOR('0LV8Pu3tnDLfgbWt9$DKVp',#1,'Door \X2\00E9\X0\',$,$,#10,#11,$,2.1,0.9,$,$,$);
#23=IFCWALL('',#1,'No Id',$,$,#10,#11,$,$);
#24=IFCWALLTYPE('7hJ',#1,'Type',$,$,$,$,$,$,.STANDARD.);
#30=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2HR'),$);
#31=IFCPROPERTYSINGLEVALUE('IsExternal',$,IFCBOOLEAN(.T.),$);
#32=IFCPROPERTYSET('3aB',#1,'Pset_WallCommon',$,(#30,#31));
#33=IFCRELDEFINESBYPROPERTIES('4cD',#1,$,$,(#20,#21),#32);
#40=IFCQUANTITYLENGTH('Height',$,$,3.5,$);
#41=IFCELEMENTQUANTITY('5eF',#1,'BaseQuantities',$,$,(#40));
#42=IFCRELDEFINESBYPROPERTIES('6gH',#1,$,$,(#20),#41);
ENDSEC;
END-ISO-10303-21;
`

func TestParse_Components(t *testing.T) {
	components, err := Parse([]byte(sampleModel))
	require.NoError(t, err)
	require.Len(t, components, 3)

	wall := components[0]
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", wall.GlobalID)
	assert.Equal(t, "Wall A", wall.Name)
	assert.Equal(t, "IFCWALL", wall.Type)
	assert.Equal(t, map[string]map[string]any{
		"Pset_WallCommon": {"FireRating": "2HR", "IsExternal": true},
		"BaseQuantities":  {"Height": 3.5},
	}, wall.PropertySets)

	assert.Equal(t, "Wall B", components[1].Name)
	assert.Contains(t, components[1].PropertySets, "Pset_WallCommon")

	assert.Equal(t, "IFCDOOR", components[2].Type)
	assert.Equal(t, "Door é", components[2].Name)
	assert.Empty(t, components[2].PropertySets)
}

func TestParse_NotStep(t *testing.T) {
	_, err := Parse([]byte("hello"))
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("ISO-10303-21;\nDATA;\n#1=IFCWALL('x',#2;\n"))
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestSummarize(t *testing.T) {
	components, err := Parse([]byte(sampleModel))
	require.NoError(t, err)

	summary := Summarize(components, DefaultMaxTypeCounts, DefaultMaxSampleComponents)

	assert.Equal(t, "IFC Component Type Counts:\n"+
		"- IFCWALL: 2\n"+
		"- IFCDOOR: 1\n"+
		"\n"+
		"Sample Components:\n"+
		"- IFCWALL | Wall A | 2O2Fr$t4X7Zf8NOew3FLOH | Psets: ['BaseQuantities', 'Pset_WallCommon']\n"+
		"- IFCWALL | Wall B | 1kTvXnbbzCWw8lcMd1dR4o | Psets: ['Pset_WallCommon']\n"+
		"- IFCDOOR | Door é | 0LV8Pu3tnDLfgbWt9$DKVp | Psets: []", summary)
}

func TestSummarize_Limits(t *testing.T) {
	components := []domain.IfcComponent{
		{GlobalID: "a", Type: "IFCBEAM"},
		{GlobalID: "b", Type: "IFCSLAB"},
		{GlobalID: "c", Type: "IFCSLAB"},
	}

	summary := Summarize(components, 1, 1)

	assert.Equal(t, "IFC Component Type Counts:\n- IFCSLAB: 2\n\nSample Components:\n- IFCBEAM |  | a | Psets: []", summary)
}

func TestRead_PlainAndZipped(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "plant.ifc")
	require.NoError(t, os.WriteFile(plainPath, []byte(sampleModel), 0o600))

	zipPath := filepath.Join(dir, "plant.ifczip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("models/plant.IFC")
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleModel))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	reader := New()
	assert.Equal(t, []string{"ifc", "ifczip"}, reader.SourceTypes())

	for _, p := range []string{plainPath, zipPath} {
		result, err := reader.Read(context.Background(), p)
		require.NoError(t, err, p)
		assert.Len(t, result.Components, 3)
		assert.Contains(t, result.Text, "- IFCWALL: 2")
	}
}

func TestRead_ZipWithoutModel(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.ifczip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = New().Read(context.Background(), zipPath)
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestDecodeString(t *testing.T) {
	tests := map[string]string{
		`plain`:              "plain",
		`\X2\00E9\X0\t\X2\`: "ét\\X2\\",
		`caf\X\E9`:           "café",
		`a\\b`:               `a\b`,
	}
	for in, want := range tests {
		assert.Equal(t, want, decodeString(in), in)
	}
}
