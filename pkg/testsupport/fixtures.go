package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/model"
)

// IdentificationCSV is a field schema exercising every kind and role.
const IdentificationCSV = `categoría,pregunta,tipo,opciones
Datos Personales,Nombres,text_input,
Datos Personales,Apellido Paterno,text_input,
Datos Personales,Fecha de Nacimiento,date_input,
Datos Personales,Edad,number_input,
Datos Personales,Sexo,selectbox,"Femenino, Masculino"
Domicilio,Departamento:,selectbox,
Domicilio,Provincia:,selectbox,
Domicilio,Distrito:,selectbox,
Domicilio,Dirección,text_input,
Perfil,Temas de interés,multiselect,"Agua, Empleo, Salud"
Perfil,Observaciones,text_area,
Perfil,Hijos,number_input,
Perfil,,text_input,
`

// InteractionsCSV is the interaction form schema.
const InteractionsCSV = `categoría,pregunta,tipo,opciones
Registro,Nombre y Apellido del STK,selectbox,
Registro,Tipo de interacción,selectbox,"Reunión, Llamada, Visita"
Registro,Fecha de la interacción,date_input,
Registro,Resumen,text_area,
`

// GeoCSV is a small region reference table.
const GeoCSV = `Ubigeo,Departamento,Provincia,Distrito
010101,Amazonas,Chachapoyas,Chachapoyas
010102,Amazonas,Chachapoyas,Asuncion
010201,Amazonas,Bagua,Bagua
150101,Lima,Lima,Lima
150102,Lima,Lima,Ancon
150201,Lima,Barranca,Barranca
`

// GeoRecords mirrors GeoCSV.
func GeoRecords() []model.GeoRecord {
	return []model.GeoRecord{
		{Region: "Amazonas", Province: "Chachapoyas", District: "Chachapoyas"},
		{Region: "Amazonas", Province: "Chachapoyas", District: "Asuncion"},
		{Region: "Amazonas", Province: "Bagua", District: "Bagua"},
		{Region: "Lima", Province: "Lima", District: "Lima"},
		{Region: "Lima", Province: "Lima", District: "Ancon"},
		{Region: "Lima", Province: "Barranca", District: "Barranca"},
	}
}

// WriteFile writes content under dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}
