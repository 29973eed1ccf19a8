package web

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/logging"
	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/go-chi/chi/v5"
)

// PreviewItem is one row of the order table.
type PreviewItem struct {
	Row             int    `json:"row"`
	Product         string `json:"product"`
	Description     string `json:"description"`
	ManufacturerRef string `json:"manufacturer_ref"`
	UnitPrice       string `json:"unit_price"`
	Quantity        int    `json:"quantity"`
	Total           string `json:"total"`
}

// PreviewResponse is the loaded order as shown to the operator.
type PreviewResponse struct {
	Session    string        `json:"session"`
	File       string        `json:"file"`
	ExportFile string        `json:"export_file"`
	Items      []PreviewItem `json:"items"`
	Total      string        `json:"total"`
	TotalValue string        `json:"total_value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleSearchSuppliers(w http.ResponseWriter, r *http.Request) {
	found, err := s.suppliers.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if found == nil {
		found = []types.Supplier{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	sup, err := s.suppliers.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sup)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	session, err := s.loadUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewOf(session))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, err := s.loadUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	code := strings.TrimSpace(r.FormValue("supplier"))
	if code != "" {
		sup, err := s.suppliers.Lookup(r.Context(), code)
		if err != nil {
			respondError(w, r, fmt.Errorf("supplier %q: %w", code, err))
			return
		}
		session.SelectSupplier(sup)
	}

	if terms := strings.TrimSpace(r.FormValue("payment_terms")); terms != "" {
		session.SetPaymentTerms(terms)
	}

	class, err := types.ParsePurchaseClass(r.FormValue("class"))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	session.SetPurchaseClass(class)

	out, err := session.Export()
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("X-Session-ID", session.ID.String())
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

// loadUpload reads the "file" part of a multipart form into a new session.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request) (*converter.Session, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form: %w", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field: %v", errBadRequest, err)
	}
	defer file.Close()

	session := converter.NewSession(s.converter, s.options)
	session.SetClock(s.now)

	logging.WithFields(r.Context(), "session", session.ID.String(), "file", header.Filename).
		Debug("upload received", "size", header.Size)

	if err := session.Load(r.Context(), header.Filename, file); err != nil {
		return nil, err
	}
	return session, nil
}

func previewOf(session *converter.Session) PreviewResponse {
	doc := session.Document
	items := make([]PreviewItem, 0, doc.Len())
	for _, item := range doc.Items {
		items = append(items, PreviewItem{
			Row:             item.Row,
			Product:         item.ProductCode,
			Description:     item.Description,
			ManufacturerRef: item.ManufacturerRef,
			UnitPrice:       numeric.FormatBRL(item.DisplayPrice()),
			Quantity:        item.Quantity,
			Total:           converter.DisplayTotal(item.Total),
		})
	}
	return PreviewResponse{
		Session:    session.ID.String(),
		File:       session.FileName,
		ExportFile: csvwriter.OutputFileName(session.FileName),
		Items:      items,
		Total:      converter.DisplayTotal(doc.Total),
		TotalValue: doc.Total.String(),
	}
}
