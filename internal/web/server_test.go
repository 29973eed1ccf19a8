package web

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/po-export/internal/config"
	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/logging"
	"github.com/ginjaninja78/po-export/internal/supplier"
	"github.com/ginjaninja78/po-export/internal/testutil"
	"github.com/ginjaninja78/po-export/internal/types"
)

func newTestServer(t *testing.T, maxUpload int64) *Server {
	t.Helper()
	dir := supplier.NewMemory([]types.Supplier{
		{Code: "S1", Name: "ACME Industria", PaymentTerms: "30/60"},
		{Code: "S2", Name: "Beta Comercio"},
	})
	conv := converter.New(converter.WithLogger(logging.Discard()), converter.WithMaxSize(maxUpload))
	s := NewServer(conv, dir, csvwriter.DefaultOptions(), config.ServerConfig{
		MaxUploadBytes: maxUpload,
		RequestTimeout: 5 * time.Second,
	})
	s.now = func() time.Time { return time.Date(2026, time.October, 14, 10, 0, 0, 0, time.Local) }
	return s
}

func uploadRequest(t *testing.T, path, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body %q is not json: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func orderFile(t *testing.T) []byte {
	return testutil.OrderWorkbook(t, []any{"X1", "Widget", "RF1", 10.5, 3, 31.5})
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(t, 1<<20), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSearchSuppliers(t *testing.T) {
	s := newTestServer(t, 1<<20)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "acme", want: []string{"S1"}},
		{query: "s", want: []string{"S1", "S2"}},
		{query: "", want: []string{}},
		{query: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/suppliers?q="+tt.query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("q=%q: status %d", tt.query, rec.Code)
		}
		var got []types.Supplier
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("q=%q: %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("q=%q: got %v, want codes %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Code != tt.want[i] {
				t.Errorf("q=%q: [%d] = %s, want %s", tt.query, i, got[i].Code, tt.want[i])
			}
		}
	}
}

func TestGetSupplier(t *testing.T) {
	s := newTestServer(t, 1<<20)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/suppliers/S1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"payment_terms":"30/60"`) {
		t.Errorf("GET S1 = %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/suppliers/NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET NOPE = %d, want 404", rec.Code)
	}
}

func TestPreview(t *testing.T) {
	s := newTestServer(t, 1<<20)
	rec := serve(s, uploadRequest(t, "/api/orders/preview", "pedido.xlsx", orderFile(t), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ExportFile != "pedido.csv" || resp.Total != "R$ 31,50" || resp.TotalValue != "31.5" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %+v", resp.Items)
	}
	item := resp.Items[0]
	if item.Row != 2 || item.Product != "X1" || item.UnitPrice != "R$ 10,50" || item.Quantity != 3 || item.Total != "R$ 31,50" {
		t.Errorf("item = %+v", item)
	}
	if resp.Session == "" {
		t.Error("missing session id")
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, 1<<20)
	rec := serve(s, uploadRequest(t, "/api/orders/export", "Pedido Março.xlsx", orderFile(t), map[string]string{
		"supplier": "S1",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || params["filename"] != "Pedido Março.csv" {
		t.Errorf("Content-Disposition = %q (%v)", rec.Header().Get("Content-Disposition"), err)
	}

	want := "Fornecedor;Loja;CondPag;Produto;Quantidade;Valor;DataEntrega;Local;ClasCompra\n" +
		"S1;'01;'30/60;X1;3;10,50;14/10/2026;'01;ESTOQUE"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestExportOverrides(t *testing.T) {
	s := newTestServer(t, 1<<20)
	rec := serve(s, uploadRequest(t, "/api/orders/export", "pedido.xlsx", orderFile(t), map[string]string{
		"supplier":      "S2",
		"payment_terms": "28 DDL",
		"class":         "backorder",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasSuffix(rec.Body.String(), "S2;'01;'28 DDL;X1;3;10,50;14/10/2026;'01;ENCOMENDA") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestExportErrors(t *testing.T) {
	badSchema := testutil.Workbook(t, []any{"Produto", "Total"}, []any{"X1", 1})

	tests := []struct {
		name       string
		fileName   string
		data       []byte
		fields     map[string]string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "no supplier",
			fileName:   "pedido.xlsx",
			data:       orderFile(t),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "supplier and payment terms are required",
		},
		{
			name:       "supplier without terms",
			fileName:   "pedido.xlsx",
			data:       orderFile(t),
			fields:     map[string]string{"supplier": "S2"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "payment terms",
		},
		{
			name:       "unknown supplier",
			fileName:   "pedido.xlsx",
			data:       orderFile(t),
			fields:     map[string]string{"supplier": "S9"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "supplier not found",
		},
		{
			name:       "bad class",
			fileName:   "pedido.xlsx",
			data:       orderFile(t),
			fields:     map[string]string{"supplier": "S1", "class": "urgent"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "unknown purchase class",
		},
		{
			name:       "missing columns",
			fileName:   "pedido.xlsx",
			data:       badSchema,
			fields:     map[string]string{"supplier": "S1"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "missing required columns: Descrição, Ref.Fabricante, Prc Compra Totvs, Pedido",
		},
		{
			name:       "not a workbook",
			fileName:   "pedido.xlsx",
			data:       []byte("not a zip"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "cannot decode workbook",
		},
		{
			name:       "wrong extension",
			fileName:   "pedido.csv",
			data:       []byte("a;b"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "only .xlsx files are accepted",
		},
		{
			name:       "no file",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "missing file field",
		},
	}

	s := newTestServer(t, 1<<20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, uploadRequest(t, "/api/orders/export", tt.fileName, tt.data, tt.fields))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if msg := errorMessage(t, rec); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, 512)
	rec := serve(s, uploadRequest(t, "/api/orders/preview", "pedido.xlsx", orderFile(t), nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413: %s", rec.Code, rec.Body.String())
	}
}

func TestStatusForUnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errUnexpected{})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "internal server error" {
		t.Errorf("message = %q", msg)
	}
}

type errUnexpected struct{}

func (errUnexpected) Error() string { return "disk on fire" }
