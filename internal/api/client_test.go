package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/dexcel/internal/types"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestSnapshot(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/data" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"colonne":["NOME","CONVERTITA"],"righe":[{"riga_excel":1,"valori":["NOME","CONVERTITA"]},{"riga_excel":2,"valori":["Mario","X"]}],"db_name":"clienti.xlsx"}`)
	})

	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if snap.SourceName != "clienti.xlsx" {
		t.Errorf("SourceName = %q", snap.SourceName)
	}
	if len(snap.Columns) != 2 || len(snap.Rows) != 2 {
		t.Fatalf("got %d columns, %d rows", len(snap.Columns), len(snap.Rows))
	}
	if snap.Rows[1].ExcelRow != 2 || snap.Rows[1].Value(0) != "Mario" {
		t.Errorf("row 2 = %+v", snap.Rows[1])
	}
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"Detail", http.StatusBadRequest, `{"detail":"Nessun DB caricato"}`, "Nessun DB caricato"},
		{"Legacy error field", http.StatusBadRequest, `{"error":"No DB"}`, "No DB"},
		{"No detail", http.StatusInternalServerError, `{}`, "HTTP error 500"},
		{"Not JSON", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP error 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.Snapshot(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d; want %d", apiErr.Status, tt.status)
			}
			if err.Error() != tt.expected {
				t.Errorf("Error() = %q; want %q", err.Error(), tt.expected)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, nil)
	_, err := c.Templates(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Endpoint != "/api/templates" {
		t.Errorf("Endpoint = %q", reqErr.Endpoint)
	}
}

func TestSetRowStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/row/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["riga_excel"] != float64(7) || body["convertita"] != true || body["non_convertita"] != false || body["pulisci"] != false {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]string{"messaggio": "Riga 7 aggiornata."})
	})

	msg, err := c.SetRowStatus(context.Background(), types.StatusRequestFor(7, types.StatusConverted))
	if err != nil {
		t.Fatalf("SetRowStatus() failed: %v", err)
	}
	if msg != "Riga 7 aggiornata." {
		t.Errorf("message = %q", msg)
	}
}

func TestAddRowAndTemplates(t *testing.T) {
	var gotValues []string
	var gotTemplates types.Templates
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/row/add":
			var body struct {
				Values []string `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			gotValues = body.Values
			writeJSON(w, http.StatusOK, map[string]string{"messaggio": "Riga aggiunta."})
		case "/api/templates/save":
			json.NewDecoder(r.Body).Decode(&gotTemplates)
			writeJSON(w, http.StatusOK, map[string]string{"messaggio": "Template salvati."})
		case "/api/templates":
			writeJSON(w, http.StatusOK, map[string]string{"convertita": "A", "non_convertita": "B"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	if _, err := c.AddRow(ctx, []string{"Mario", "", "Rossi"}); err != nil {
		t.Fatalf("AddRow() failed: %v", err)
	}
	if len(gotValues) != 3 || gotValues[0] != "Mario" || gotValues[2] != "Rossi" {
		t.Errorf("values = %v", gotValues)
	}

	if _, err := c.SaveTemplates(ctx, types.Templates{Converted: "Ciao", NotConverted: "Peccato"}); err != nil {
		t.Fatalf("SaveTemplates() failed: %v", err)
	}
	if gotTemplates.Converted != "Ciao" || gotTemplates.NotConverted != "Peccato" {
		t.Errorf("templates = %+v", gotTemplates)
	}

	tpl, err := c.Templates(ctx)
	if err != nil {
		t.Fatalf("Templates() failed: %v", err)
	}
	if tpl.Converted != "A" || tpl.NotConverted != "B" {
		t.Errorf("templates = %+v", tpl)
	}
}

func TestMergeUploadsEveryFile(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.xlsx", "b.xlsx"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/merge" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Errorf("got %d files under \"files\"", len(files))
		}
		for i, fh := range files {
			if fh.Filename != filepath.Base(paths[i]) {
				t.Errorf("file %d name = %q", i, fh.Filename)
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"messaggio": "Unite 2 righe."})
	})

	msg, err := c.Merge(context.Background(), paths)
	if err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}
	if msg != "Unite 2 righe." {
		t.Errorf("message = %q", msg)
	}
}

func TestImportMissingFile(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.Import(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("Import() should fail for a missing file")
	}
	if called {
		t.Error("no request should be sent when the file cannot be read")
	}
}
