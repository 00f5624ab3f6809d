package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linergy/subtrans-ops/internal/locator"
	"github.com/linergy/subtrans-ops/internal/models"
)

type fakeResolver struct {
	loc   locator.Location
	err   error
	calls int
	token string
}

func (f *fakeResolver) ComputeFaultLocation(_ context.Context, _ string, _ float64) (locator.Location, error) {
	f.calls++
	if f.err != nil {
		return locator.Location{}, f.err
	}
	return f.loc, nil
}

func (f *fakeResolver) SetToken(token string) { f.token = token }

func TestCreateFallaSendsResolvedPoint(t *testing.T) {
	var gotBody map[string]any
	inserts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/rpc/insert_falla_with_wkt":
			inserts++
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			json.NewEncoder(w).Encode(models.Falla{ID: "f1", LineaID: "l1", Km: 12.5, Estado: models.EstadoAbierta})
		case "/api/lineas/l1":
			json.NewEncoder(w).Encode(models.Linea{ID: "l1", Numero: "73990", Nombre: "JOM-73990-LAF"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	res := &fakeResolver{loc: locator.Location{Lat: 24.02, Lon: -104.65}}
	c := New(srv.URL, res, nil)

	result, err := c.CreateFalla(context.Background(), CreateFallaInput{
		LineaID: "l1",
		Km:      12.5,
		Tipo:    "Descarga atmosférica",
	})
	if err != nil {
		t.Fatalf("CreateFalla: %v", err)
	}
	if result.Falla.ID != "f1" {
		t.Errorf("falla id = %q", result.Falla.ID)
	}
	if result.Location.Lat != 24.02 || result.Location.Lon != -104.65 {
		t.Errorf("location = %+v", result.Location)
	}
	if result.Linea == nil || result.Linea.Numero != "73990" {
		t.Errorf("linea = %+v", result.Linea)
	}
	if inserts != 1 {
		t.Errorf("insert RPC called %d times", inserts)
	}
	if got := gotBody["geom_wkt"]; got != "POINT(-104.65 24.02)" {
		t.Errorf("geom_wkt = %v", got)
	}
	if got := gotBody["linea_id"]; got != "l1" {
		t.Errorf("linea_id = %v", got)
	}
}

func TestCreateFallaAbortsWhenResolutionFails(t *testing.T) {
	inserts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inserts++
	}))
	defer srv.Close()

	res := &fakeResolver{err: &locator.ResolutionError{Message: "fuera de rango"}}
	signedOut := false
	c := New(srv.URL, res, func() { signedOut = true })

	_, err := c.CreateFalla(context.Background(), CreateFallaInput{LineaID: "l1", Km: 99, Tipo: "x"})
	var resErr *locator.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("want ResolutionError, got %v", err)
	}
	if inserts != 0 {
		t.Errorf("insert attempted after failed resolution")
	}
	if signedOut {
		t.Errorf("resolution error must not trigger sign-out")
	}
}

func TestCreateFallaValidation(t *testing.T) {
	c := New("http://unused", &fakeResolver{}, nil)
	cases := []CreateFallaInput{
		{LineaID: "", Km: 1, Tipo: "x"},
		{LineaID: "l1", Km: -1, Tipo: "x"},
		{LineaID: "l1", Km: 1, Tipo: "  "},
	}
	for i, in := range cases {
		if _, err := c.CreateFalla(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestExpiredSessionTriggersSignOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "JWT expired"})
	}))
	defer srv.Close()

	signedOut := false
	c := New(srv.URL, &fakeResolver{}, func() { signedOut = true })

	if err := c.DeleteFalla(context.Background(), "f1"); err == nil {
		t.Fatal("expected error")
	}
	if !signedOut {
		t.Error("sign-out callback not invoked for expired session")
	}
}

func TestPlainErrorDoesNotSignOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "estado desconocido"})
	}))
	defer srv.Close()

	signedOut := false
	c := New(srv.URL, &fakeResolver{}, func() { signedOut = true })

	err := c.DeleteReporte(context.Background(), "r1")
	if err == nil || err.Error() != "estado desconocido" {
		t.Fatalf("err = %v", err)
	}
	if signedOut {
		t.Error("application error must not trigger sign-out")
	}
}

func TestUpdateFallaReResolvesGeometry(t *testing.T) {
	var geomBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/fallas/f1":
			json.NewEncoder(w).Encode(models.Falla{ID: "f1", LineaID: "l1", Km: 8, Estado: models.EstadoAbierta})
		case r.Method == http.MethodPost && r.URL.Path == "/api/rpc/update_falla_geom":
			if err := json.NewDecoder(r.Body).Decode(&geomBody); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	res := &fakeResolver{loc: locator.Location{Lat: 24.1, Lon: -104.7}}
	c := New(srv.URL, res, nil)

	lineaID, km := "l1", 8.0
	f, err := c.UpdateFalla(context.Background(), "f1", UpdateFallaInput{LineaID: &lineaID, Km: &km})
	if err != nil {
		t.Fatalf("UpdateFalla: %v", err)
	}
	if res.calls != 1 {
		t.Errorf("resolver called %d times", res.calls)
	}
	if got := geomBody["geom_wkt"]; got != "POINT(-104.7 24.1)" {
		t.Errorf("geom_wkt = %v", got)
	}
	if f.Geom != "POINT(-104.7 24.1)" {
		t.Errorf("returned geom = %q", f.Geom)
	}
}

func TestUpdateFallaSkipsResolutionWithoutBothLocationFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.Falla{ID: "f1"})
	}))
	defer srv.Close()

	res := &fakeResolver{}
	c := New(srv.URL, res, nil)

	desc := "nueva descripción"
	if _, err := c.UpdateFalla(context.Background(), "f1", UpdateFallaInput{Descripcion: &desc}); err != nil {
		t.Fatalf("UpdateFalla: %v", err)
	}

	// km alone does not re-resolve; both linea and km must be supplied
	km := 9.0
	if _, err := c.UpdateFalla(context.Background(), "f1", UpdateFallaInput{Km: &km}); err != nil {
		t.Fatalf("UpdateFalla: %v", err)
	}
	if res.calls != 0 {
		t.Errorf("resolver called %d times for partial location updates", res.calls)
	}
}

func TestLoginStoresTokenEverywhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(loginResponse{
				Token: "tok-123",
				User:  models.Profile{ID: "u1", Email: "ops@linergy.mx", Role: models.RoleAdmin},
			})
		case "/api/fallas/f1":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
				t.Errorf("Authorization = %q", got)
			}
			json.NewEncoder(w).Encode(models.Falla{ID: "f1"})
		}
	}))
	defer srv.Close()

	res := &fakeResolver{}
	c := New(srv.URL, res, nil)

	user, err := c.Login(context.Background(), "ops@linergy.mx", "secreta")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %q", user.Role)
	}
	if res.token != "tok-123" {
		t.Errorf("resolver token = %q", res.token)
	}
	if _, err := c.GetFalla(context.Background(), "f1"); err != nil {
		t.Fatalf("GetFalla: %v", err)
	}
}

func TestImportKMZ(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/functions/v1/import-kmz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "lineas.kmz" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]int{"lineas": 3, "estructuras": 12, "omitidos": 1})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeResolver{}, nil)
	summary, err := c.ImportKMZ(context.Background(), "lineas.kmz", bytes.NewReader([]byte("zipbytes")))
	if err != nil {
		t.Fatalf("ImportKMZ: %v", err)
	}
	if summary.Lineas != 3 || summary.Estructuras != 12 || summary.Omitidos != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSetFallaEstadoRejectsUnknown(t *testing.T) {
	c := New("http://unused", &fakeResolver{}, nil)
	if _, err := c.SetFallaEstado(context.Background(), "f1", models.Estado("RESUELTA")); err == nil {
		t.Fatal("expected error for unknown estado")
	}
}

func TestAPIErrorFallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("algo salió mal"))
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeResolver{}, nil)
	err := c.DeleteFalla(context.Background(), "f1")
	if err == nil || !strings.Contains(err.Error(), "algo salió mal") {
		t.Fatalf("err = %v", err)
	}
}
