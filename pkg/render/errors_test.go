package render

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/geo"
	"github.com/goliatone/go-formsheet/pkg/schema"
	"github.com/goliatone/go-formsheet/pkg/testsupport"
	"github.com/goliatone/go-formsheet/pkg/validation"
)

func TestMapViolations(t *testing.T) {
	loader := schema.NewLoader(schema.WithFS(fstest.MapFS{
		"id.csv": {Data: []byte(testsupport.IdentificationCSV)},
	}))
	s, err := loader.Load(context.Background(), schema.SourceFromFS("id.csv"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	pass := Pass{
		Schema:          s,
		Geo:             geo.NewResolver(testsupport.GeoRecords()),
		CascadeCategory: "Domicilio",
		Labels:          DefaultCascadeLabels(),
	}

	got := MapViolations(pass, []validation.Violation{
		{Field: "Nombres", Message: "Falta completar el Nombre."},
		{Field: "Nombres", Message: "Falta completar el Nombre."},
		{Field: "Distrito:", Message: "Falta seleccionar Distrito."},
		{Field: "Nombre y Apellido del STK", Message: "Debe seleccionar un Stakeholder."},
		{Field: "Hijos", Message: "  "},
	})

	want := ErrorMapping{
		Fields: map[string][]string{
			"2_Nombres": {"Falta completar el Nombre."},
			KeyDistrict: {"Falta seleccionar Distrito."},
		},
		Form: []string{"Debe seleccionar un Stakeholder."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	if msgs := got.For("3_Apellido Paterno"); msgs != nil {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestMapViolations_NoCascadeWithoutGeo(t *testing.T) {
	got := MapViolations(Pass{}, []validation.Violation{{Field: "Departamento:", Message: "Falta seleccionar Departamento."}})
	if got.Fields != nil || len(got.Form) != 1 {
		t.Fatalf("unexpected mapping %+v", got)
	}
}
