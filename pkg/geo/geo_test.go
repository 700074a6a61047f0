package geo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/model"
	"github.com/goliatone/go-formsheet/pkg/schema"
)

func loadFixture(t *testing.T) *Resolver {
	t.Helper()
	r, err := LoadReference(context.Background(), schema.NewLoader(), schema.SourceFromFile(filepath.Join("testdata", "ubigeo.csv")))
	if err != nil {
		t.Fatalf("load reference: %v", err)
	}
	return r
}

func TestResolver_Levels(t *testing.T) {
	r := loadFixture(t)

	if diff := cmp.Diff([]string{"Amazonas", "Arequipa", "Lima"}, r.Regions()); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Barranca", "Lima"}, r.Provinces("Lima")); diff != "" {
		t.Fatalf("provinces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Asuncion", "Chachapoyas"}, r.Districts("Amazonas", "Chachapoyas")); diff != "" {
		t.Fatalf("districts mismatch (-want +got):\n%s", diff)
	}
	if got := r.Provinces(""); len(got) != 0 {
		t.Fatalf("expected no provinces for unset region, got %v", got)
	}
	if got := r.Districts("Lima", ""); len(got) != 0 {
		t.Fatalf("expected no districts for unset province, got %v", got)
	}
}

func TestResolver_ChildrenBelongToParents(t *testing.T) {
	r := loadFixture(t)
	for _, region := range r.Regions() {
		for _, province := range r.Provinces(region) {
			if !hasRecord(r.records, func(rec model.GeoRecord) bool {
				return rec.Region == region && rec.Province == province
			}) {
				t.Fatalf("province %q returned for foreign region %q", province, region)
			}
			for _, district := range r.Districts(region, province) {
				if !hasRecord(r.records, func(rec model.GeoRecord) bool {
					return rec.Region == region && rec.Province == province && rec.District == district
				}) {
					t.Fatalf("district %q returned for foreign pair (%q, %q)", district, region, province)
				}
			}
		}
	}
}

func TestLoadReference_KeepsLeadingZeros(t *testing.T) {
	loader := schema.NewLoader()
	table, err := loader.ReadTable(context.Background(), schema.SourceFromFile(filepath.Join("testdata", "ubigeo.csv")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := table.Cell(table.Rows[0], table.Column("Ubigeo")); got != "010101" {
		t.Fatalf("ubigeo = %q, want 010101", got)
	}
}

func TestLoadReference_MissingColumns(t *testing.T) {
	_, err := LoadReference(context.Background(), schema.NewLoader(), schema.SourceFromFile(filepath.Join("..", "schema", "testdata", "identificacion.csv")))
	if err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestCascade_RegionChangeInvalidatesDownstream(t *testing.T) {
	c := Cascade{Region: "Lima", Province: "Barranca", District: "Barranca"}
	c.SelectRegion("Arequipa")
	if c.Province != "" || c.District != "" {
		t.Fatalf("expected downstream cleared, got %+v", c)
	}

	c = Cascade{Region: "Lima", Province: "Lima", District: "Ancon"}
	c.SelectRegion("Lima")
	if c.Province != "Lima" || c.District != "Ancon" {
		t.Fatalf("re-selecting same region must keep downstream, got %+v", c)
	}
}

func TestCascade_NormalizeDropsIncompatibleSelections(t *testing.T) {
	r := loadFixture(t)

	c := Cascade{Region: "Arequipa", Province: "Lima", District: "Ancon"}
	if !c.Normalize(r) {
		t.Fatalf("expected normalize to report a change")
	}
	if diff := cmp.Diff(Cascade{Region: "Arequipa"}, c); diff != "" {
		t.Fatalf("cascade mismatch (-want +got):\n%s", diff)
	}

	c = Cascade{Region: "Lima", Province: "Lima", District: "Camana"}
	c.Normalize(r)
	if diff := cmp.Diff(Cascade{Region: "Lima", Province: "Lima"}, c); diff != "" {
		t.Fatalf("cascade mismatch (-want +got):\n%s", diff)
	}

	c = Cascade{Region: "Lima", Province: "Lima", District: "Ancon"}
	if c.Normalize(r) {
		t.Fatalf("valid cascade should be untouched")
	}
	if !c.ProvinceEnabled() || !c.DistrictEnabled() {
		t.Fatalf("expected enabled controls")
	}
	if (Cascade{}).ProvinceEnabled() {
		t.Fatalf("province control must be disabled without a region")
	}
}

func hasRecord(records []model.GeoRecord, match func(model.GeoRecord) bool) bool {
	for _, rec := range records {
		if match(rec) {
			return true
		}
	}
	return false
}
