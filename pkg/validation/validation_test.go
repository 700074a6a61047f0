package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/model"
)

var identification = model.Schema{
	Fields: []model.FieldSpec{
		{Category: "Datos", Question: "Nombres", Kind: model.FieldKindText, Role: model.RoleName},
		{Category: "Datos", Question: "Apellido Paterno", Kind: model.FieldKindText, Role: model.RoleSurname},
		{Category: "Domicilio", Question: "Departamento:", Kind: model.FieldKindSingleSelect, Role: model.RoleRegion},
		{Category: "Domicilio", Question: "Provincia:", Kind: model.FieldKindSingleSelect, Role: model.RoleProvince},
	},
	Categories: []string{"Datos", "Domicilio"},
}

var cascade = Cascade{Enabled: true, Region: "Departamento:", Province: "Provincia:", District: "Distrito:"}

func filled() *answers.Set {
	set := answers.NewSet()
	set.Put("Nombres", answers.Text("Ana"))
	set.Put("Apellido Paterno", answers.Text("Diaz"))
	set.Put("Departamento:", answers.Text("Lima"))
	set.Put("Provincia:", answers.Text("Lima"))
	set.Put("Distrito:", answers.NoSelection())
	return set
}

func TestForSchema_ValidSet(t *testing.T) {
	v := ForSchema(identification, cascade)
	if err := v.Validate(identification, filled()); err != nil {
		t.Fatalf("expected no violations, got %v", err)
	}
}

func TestForSchema_MissingProvince(t *testing.T) {
	set := filled()
	set.Put("Provincia:", answers.NoSelection())

	violations := ForSchema(identification, cascade).Check(identification, set)
	want := []Violation{{Field: "Provincia:", Message: "Falta seleccionar Provincia."}}
	if diff := cmp.Diff(want, violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestForSchema_CollectsEveryViolation(t *testing.T) {
	set := answers.NewSet()
	set.Put("Nombres", answers.Text("  "))
	set.Put("Apellido Paterno", answers.Text(""))

	err := ForSchema(identification, cascade).Validate(identification, set)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	want := []string{
		"Falta seleccionar Departamento.",
		"Falta seleccionar Provincia.",
		"Falta completar el Nombre.",
		"Falta completar el Apellido Paterno.",
	}
	if diff := cmp.Diff(want, verr.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestAnyNonEmpty_OneOfSeveral(t *testing.T) {
	schema := model.Schema{Fields: []model.FieldSpec{
		{Question: "Primer Nombre", Kind: model.FieldKindText, Role: model.RoleName},
		{Question: "Segundo Nombre", Kind: model.FieldKindText, Role: model.RoleName},
	}}
	set := answers.NewSet()
	set.Put("Segundo Nombre", answers.Text("Luis"))

	if got := AnyNonEmpty(model.RoleName).Check(schema, set); len(got) != 0 {
		t.Fatalf("expected rule to pass, got %v", got)
	}
}

func TestSelectionRequired_Subject(t *testing.T) {
	schema := model.Schema{Fields: []model.FieldSpec{
		{Question: "Nombre y Apellido del STK", Kind: model.FieldKindSingleSelect, Role: model.RoleSubjectSelector},
	}}
	v := ForSchema(schema, Cascade{})

	set := answers.NewSet()
	set.Put("Nombre y Apellido del STK", answers.NoSelection())
	want := []Violation{{Field: "Nombre y Apellido del STK", Message: "Debe seleccionar un Stakeholder."}}
	if diff := cmp.Diff(want, v.Check(schema, set)); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	set.Put("Nombre y Apellido del STK", answers.Text("Ana Diaz"))
	if err := v.Validate(schema, set); err != nil {
		t.Fatalf("expected selection to satisfy rule: %v", err)
	}
}

func TestCascadeRequired_DisabledPasses(t *testing.T) {
	if got := CascadeRequired(Cascade{}).Check(model.Schema{}, answers.NewSet()); got != nil {
		t.Fatalf("disabled cascade should not report, got %v", got)
	}
}
