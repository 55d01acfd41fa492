// Package validate checks retrieved artifacts for structural soundness.
// Portals occasionally serve HTML error pages or truncated streams with a
// 200 status; validation is what separates "bytes arrived" from "document
// retrieved".
package validate

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure PDFValidator implements the interface.
var _ driven.DocumentValidator = (*PDFValidator)(nil)

// PDFValidator validates that bytes parse as a well-formed PDF.
type PDFValidator struct {
	conf *model.Configuration
}

// NewPDFValidator creates a PDF validator with relaxed conformance
// checking. Provider portals emit PDFs of wildly varying quality.
func NewPDFValidator() *PDFValidator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFValidator{conf: conf}
}

// Validate returns nil when data is a well-formed PDF.
func (v *PDFValidator) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", domain.ErrValidationFailed)
	}
	if err := api.Validate(bytes.NewReader(data), v.conf); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	return nil
}
