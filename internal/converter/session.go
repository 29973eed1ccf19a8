package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
	"github.com/google/uuid"
)

// ErrNoDocument is returned by Export when no file has been loaded.
var ErrNoDocument = errors.New("no order document loaded")

// Session holds the state of one operator working on one order: the loaded
// document and the export metadata being filled in. A Session is not safe for
// concurrent use.
type Session struct {
	ID uuid.UUID

	// FileName is the name of the uploaded file, used to derive the export
	// file name.
	FileName string

	Document *types.Document
	Metadata types.Metadata

	converter *Converter
	options   csvwriter.Options
	now       func() time.Time
}

// Export is a serialized order ready to hand to the invoking environment.
type Export struct {
	FileName string
	Data     []byte
}

// NewSession starts an empty session with the default purchase class.
func NewSession(c *Converter, options csvwriter.Options) *Session {
	if c == nil {
		c = New()
	}
	return &Session{
		ID:        uuid.New(),
		Metadata:  types.Metadata{PurchaseClass: types.ClassStock},
		converter: c,
		options:   options,
		now:       time.Now,
	}
}

// Load reads a workbook and replaces the current document. On any error the
// previous document is discarded and the session holds none.
func (s *Session) Load(ctx context.Context, name string, r io.Reader) error {
	s.Document = nil
	s.FileName = name

	if name != "" {
		if err := xlsxparser.CheckExtension(name); err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}
	}

	data, err := xlsxparser.ReadAll(ctx, r, s.converter.MaxSize())
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	doc, err := s.converter.Load(data)
	if err != nil {
		return err
	}
	s.Document = doc

	s.converter.logger.Info("order loaded",
		"session", s.ID.String(),
		"file", name,
		"items", doc.Len(),
		"total", doc.Total.StringFixed(2))
	return nil
}

// SelectSupplier sets the supplier and pre-fills the payment terms with its
// default. A nil supplier clears the selection and the terms.
func (s *Session) SelectSupplier(sup *types.Supplier) {
	s.Metadata.Supplier = sup
	if sup == nil {
		s.Metadata.PaymentTerms = ""
		return
	}
	s.Metadata.PaymentTerms = sup.PaymentTerms
}

// SetPaymentTerms overrides the payment terms.
func (s *Session) SetPaymentTerms(terms string) {
	s.Metadata.PaymentTerms = terms
}

// SetPurchaseClass sets the class applied to every exported line.
func (s *Session) SetPurchaseClass(class types.PurchaseClass) {
	s.Metadata.PurchaseClass = class
}

// Ready reports whether Export can succeed as far as the metadata goes.
func (s *Session) Ready() bool {
	return s.Document != nil && s.Document.Len() > 0 && s.Metadata.Complete()
}

// Export serializes the loaded document with the current metadata, dated with
// the local date.
func (s *Session) Export() (*Export, error) {
	if s.Document == nil {
		return nil, ErrNoDocument
	}

	meta, err := csvwriter.Resolve(s.Metadata)
	if err != nil {
		return nil, err
	}

	data, err := csvwriter.Generate(s.Document, meta, s.now(), s.options)
	if err != nil {
		return nil, err
	}

	out := &Export{
		FileName: csvwriter.OutputFileName(s.FileName),
		Data:     data,
	}
	s.converter.logger.Info("order exported",
		"session", s.ID.String(),
		"file", out.FileName,
		"supplier", meta.SupplierCode,
		"class", meta.PurchaseClass.Literal(),
		"bytes", len(data))
	return out, nil
}

// Reset drops the document and metadata, keeping the session id.
func (s *Session) Reset() {
	s.Document = nil
	s.FileName = ""
	s.Metadata = types.Metadata{PurchaseClass: types.ClassStock}
}

// SetClock replaces the clock used to date exports.
func (s *Session) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}
