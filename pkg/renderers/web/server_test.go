package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/cache"
	"github.com/goliatone/go-formsheet/pkg/form"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/schema"
	"github.com/goliatone/go-formsheet/pkg/store"
	"github.com/goliatone/go-formsheet/pkg/store/memstore"
	"github.com/goliatone/go-formsheet/pkg/testsupport"
)

var fixedNow = time.Date(2024, time.June, 14, 9, 30, 0, 0, time.UTC)

type switchConnector struct {
	store.Connector
	fail error
}

func (c *switchConnector) Connect(ctx context.Context, name string) (store.Store, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Connector.Connect(ctx, name)
}

func definitions() []form.Definition {
	return []form.Definition{
		{
			ID:              "identificacion",
			Title:           "Identificación",
			Schema:          schema.SourceFromFS("identificacion.csv"),
			Geo:             schema.SourceFromFS("ubigeo.csv"),
			CascadeCategory: "Domicilio",
			Labels:          render.DefaultCascadeLabels(),
			Store:           "registro",
			Table:           "Identificacion",
			SuccessMessage:  "Stakeholder registrado.",
		},
		{
			ID:     "nota",
			Title:  "Nota",
			Schema: schema.SourceFromFS("nota.csv"),
			Store:  "registro",
			Table:  "Notas",
		},
		{
			ID:     "rota",
			Title:  "Rota",
			Schema: schema.SourceFromFS("missing.csv"),
			Store:  "registro",
			Table:  "Rota",
		},
	}
}

func newServer(t *testing.T, connector store.Connector) *Server {
	t.Helper()
	fsys := fstest.MapFS{
		"identificacion.csv": {Data: []byte(testsupport.IdentificationCSV)},
		"nota.csv":           {Data: []byte("categoría,pregunta,tipo,opciones\nNota,Nombres,text_input,\n")},
		"ubigeo.csv":         {Data: []byte(testsupport.GeoCSV)},
	}
	clock := cache.ClockFunc(func() time.Time { return fixedNow })
	engine, err := form.NewEngine(connector,
		form.WithLoader(schema.NewLoader(schema.WithFS(fsys))),
		form.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	srv, err := New(engine, definitions(), WithClock(clock))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

// browser replays the session cookie across requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func validPost() url.Values {
	return url.Values{
		"2_Nombres":             {"Ana"},
		"3_Apellido Paterno":    {"Diaz"},
		"4_Fecha de Nacimiento": {"2000-06-15"},
		KeyRegion:               {"Lima"},
		KeyProvince:             {"Lima"},
		KeyDistrict:             {"Ancon"},
		"11_Temas de interés":   {"Agua", "Salud"},
		ActionField:             {"save"},
	}
}

const (
	KeyRegion   = render.KeyRegion
	KeyProvince = render.KeyProvince
	KeyDistrict = render.KeyDistrict
)

func storedRows(t *testing.T, connector store.Connector, table string) []store.Record {
	t.Helper()
	ctx := context.Background()
	st, err := connector.Connect(ctx, "registro")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	tbl, err := st.Table(ctx, table)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil
	}
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	rows, err := tbl.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return rows
}

func TestServer_IndexListsForms(t *testing.T) {
	b := &browser{t: t, handler: newServer(t, memstore.New()).Handler()}
	rec := b.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`href="/forms/identificacion"`, "Identificación", `href="/forms/nota"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestServer_FormPageIssuesSessionAndDisablesCascade(t *testing.T) {
	srv := newServer(t, memstore.New())
	b := &browser{t: t, handler: srv.Handler()}

	rec := b.get("/forms/identificacion")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(b.cookies) == 0 || b.cookies[0].Name != SessionCookie {
		t.Fatalf("expected %s cookie, got %v", SessionCookie, b.cookies)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<select id="geo_province" name="geo_province" disabled>`) {
		t.Errorf("province select should start disabled")
	}
	if !strings.Contains(body, `<option value="Amazonas">`) {
		t.Errorf("regions not offered")
	}
	if !strings.Contains(body, `value="0" min="0" readonly`) {
		t.Errorf("derived age should render read-only 0")
	}
	if srv.Sessions() != 1 {
		t.Errorf("sessions = %d", srv.Sessions())
	}
}

func TestServer_UnknownFormIs404(t *testing.T) {
	b := &browser{t: t, handler: newServer(t, memstore.New()).Handler()}
	if rec := b.get("/forms/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestServer_UnavailableForm(t *testing.T) {
	b := &browser{t: t, handler: newServer(t, memstore.New()).Handler()}
	rec := b.get("/forms/rota")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no está disponible") {
		t.Errorf("missing unavailable message")
	}
}

func TestServer_RefreshNarrowsCascadeWithoutWriting(t *testing.T) {
	connector := memstore.New()
	b := &browser{t: t, handler: newServer(t, connector).Handler()}

	rec := b.post("/forms/identificacion", url.Values{
		KeyRegion:   {"Amazonas"},
		ActionField: {ActionRefresh},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<option value="Bagua">`) || strings.Contains(body, `<option value="Barranca">`) {
		t.Errorf("provinces not narrowed to Amazonas")
	}
	if !strings.Contains(body, `<option value="Amazonas" selected>`) {
		t.Errorf("region selection not kept")
	}
	if rows := storedRows(t, connector, "Identificacion"); rows != nil {
		t.Fatalf("refresh wrote rows: %v", rows)
	}
}

func TestServer_ValidationFailureKeepsValues(t *testing.T) {
	connector := memstore.New()
	b := &browser{t: t, handler: newServer(t, connector).Handler()}

	values := validPost()
	values.Del("2_Nombres")
	values.Del(KeyProvince)
	rec := b.post("/forms/identificacion", values)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Falta seleccionar Provincia.",
		"Falta completar el Nombre.",
		`value="Diaz"`,
		`<option value="Lima" selected>`,
		`<p class="fs-error">Falta completar el Nombre.</p>`,
		`<select id="geo_district" name="geo_district" disabled>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if rows := storedRows(t, connector, "Identificacion"); rows != nil {
		t.Fatalf("invalid submission wrote rows: %v", rows)
	}
}

func TestServer_SubmitRedirectsWithFlash(t *testing.T) {
	connector := memstore.New()
	b := &browser{t: t, handler: newServer(t, connector).Handler()}
	b.get("/forms/identificacion")

	rec := b.post("/forms/identificacion", validPost())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/forms/identificacion" {
		t.Fatalf("location = %q", got)
	}

	rows := storedRows(t, connector, "Identificacion")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one", len(rows))
	}
	got := map[string]string{}
	for i, col := range rows[0] {
		got[col] = rows[1].Cell(i)
	}
	for key, want := range map[string]string{
		"Nombres":          "Ana",
		"Edad":             "23",
		"Departamento:":    "Lima",
		"Distrito:":        "Ancon",
		"Temas de interés": "Agua, Salud",
		"Fecha_Registro":   "2024-06-14 09:30:00",
	} {
		if got[key] != want {
			t.Errorf("%s = %q, want %q", key, got[key], want)
		}
	}

	page := b.get("/forms/identificacion").Body.String()
	if !strings.Contains(page, "Stakeholder registrado.") {
		t.Errorf("flash not shown after redirect")
	}
	if strings.Contains(page, `value="Diaz"`) {
		t.Errorf("answers should be cleared after a successful save")
	}
	if again := b.get("/forms/identificacion").Body.String(); strings.Contains(again, "Stakeholder registrado.") {
		t.Errorf("flash should show once")
	}
}

func TestServer_OverlappingSubmitsKeepRowsWhole(t *testing.T) {
	connector := memstore.New()
	handler := newServer(t, connector).Handler()
	b := &browser{t: t, handler: handler}
	b.get("/forms/identificacion")
	cookies := b.cookies

	const posts = 8
	codes := make([]int, posts)
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values := validPost()
			values.Set("2_Nombres", fmt.Sprintf("Ana-%d", i))
			values.Set("3_Apellido Paterno", fmt.Sprintf("Diaz-%d", i))
			req := httptest.NewRequest(http.MethodPost, "/forms/identificacion", strings.NewReader(values.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			for _, c := range cookies {
				req.AddCookie(c)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusSeeOther {
			t.Fatalf("post %d status = %d", i, code)
		}
	}
	rows := storedRows(t, connector, "Identificacion")
	if len(rows) != posts+1 {
		t.Fatalf("rows = %d, want header plus %d", len(rows), posts)
	}
	name, surname := -1, -1
	for i, col := range rows[0] {
		switch col {
		case "Nombres":
			name = i
		case "Apellido Paterno":
			surname = i
		}
	}
	seen := map[string]bool{}
	for _, row := range rows[1:] {
		var n, s int
		if _, err := fmt.Sscanf(row.Cell(name), "Ana-%d", &n); err != nil {
			t.Fatalf("name cell %q: %v", row.Cell(name), err)
		}
		if _, err := fmt.Sscanf(row.Cell(surname), "Diaz-%d", &s); err != nil {
			t.Fatalf("surname cell %q: %v", row.Cell(surname), err)
		}
		if n != s {
			t.Fatalf("row mixes two submissions: %v", row)
		}
		seen[row.Cell(name)] = true
	}
	if len(seen) != posts {
		t.Fatalf("expected %d distinct submissions, got %v", posts, seen)
	}
}

func TestServer_RemoteFailureKeepsAnswers(t *testing.T) {
	connector := &switchConnector{Connector: memstore.New(), fail: errors.New("quota exceeded")}
	b := &browser{t: t, handler: newServer(t, connector).Handler()}

	rec := b.post("/forms/identificacion", validPost())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "error técnico") || !strings.Contains(body, `value="Diaz"`) {
		t.Errorf("expected technical banner with kept values")
	}

	connector.fail = nil
	if rec := b.post("/forms/identificacion", validPost()); rec.Code != http.StatusSeeOther {
		t.Fatalf("retry status = %d", rec.Code)
	}
	if rows := storedRows(t, connector, "Identificacion"); len(rows) != 2 {
		t.Fatalf("rows after retry = %d", len(rows))
	}
}

func TestServer_GeoOptions(t *testing.T) {
	b := &browser{t: t, handler: newServer(t, memstore.New()).Handler()}

	decode := func(rec *httptest.ResponseRecorder) []string {
		t.Helper()
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var out []string
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	provinces := decode(b.get("/forms/identificacion/geo/provinces?region=Amazonas"))
	if diff := cmp.Diff([]string{"Bagua", "Chachapoyas"}, provinces); diff != "" {
		t.Errorf("provinces mismatch (-want +got):\n%s", diff)
	}
	districts := decode(b.get("/forms/identificacion/geo/districts?region=Lima&province=Lima"))
	if diff := cmp.Diff([]string{"Ancon", "Lima"}, districts); diff != "" {
		t.Errorf("districts mismatch (-want +got):\n%s", diff)
	}
	if got := decode(b.get("/forms/identificacion/geo/provinces?region=Cusco")); len(got) != 0 {
		t.Errorf("unknown region returned %v", got)
	}
	if rec := b.get("/forms/nota/geo/provinces?region=Lima"); rec.Code != http.StatusNotFound {
		t.Errorf("form without geo status = %d", rec.Code)
	}
}

func TestServer_ServesStylesheet(t *testing.T) {
	b := &browser{t: t, handler: newServer(t, memstore.New()).Handler()}
	rec := b.get("/assets/" + StylesheetName)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".fs-page") {
		t.Fatalf("stylesheet status = %d", rec.Code)
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	engine, err := form.NewEngine(memstore.New())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defs := definitions()
	if _, err := New(engine, append(defs, defs[0])); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
