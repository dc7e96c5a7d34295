package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
	"gstreco/internal/middleware"
	"gstreco/internal/service"
)

// Multipart field names accepted by the reconciliation endpoints.
const (
	fieldPortal      = "file_portal"
	fieldZoho        = "file_zoho"
	fieldOdooRegCGST = "odoo_reg_cgst"
	fieldOdooRegIGST = "odoo_reg_igst"
	fieldOdooRCMCGST = "odoo_rcm_cgst"
	fieldOdooRCMIGST = "odoo_rcm_igst"
	fieldPeriodStart = "period_start"
	fieldNotifyEmail = "notify_email"
)

const periodLayout = "2006-01-02"

// offsetFields maps form fields to the manual offset figures.
var offsetFields = []struct {
	name    string
	opening bool
	head    domain.TaxHead
}{
	{"liability_igst", false, domain.HeadIGST},
	{"liability_cgst", false, domain.HeadCGST},
	{"liability_sgst", false, domain.HeadSGST},
	{"opening_igst", true, domain.HeadIGST},
	{"opening_cgst", true, domain.HeadCGST},
	{"opening_sgst", true, domain.HeadSGST},
}

// RecoHandler handles the upload-and-reconcile endpoints.
type RecoHandler struct {
	recoService service.RecoService
	maxBytes    int64
}

// NewRecoHandler creates a new RecoHandler. maxFileSizeMB bounds each
// uploaded file.
func NewRecoHandler(recoService service.RecoService, maxFileSizeMB int64) *RecoHandler {
	return &RecoHandler{recoService: recoService, maxBytes: maxFileSizeMB * 1024 * 1024}
}

// ReconcileOdoo handles POST /api/v1/reco/gstr2b/odoo
func (h *RecoHandler) ReconcileOdoo(c *gin.Context) {
	h.reconcile(c, domain.BooksFormatOdoo)
}

// ReconcileZoho handles POST /api/v1/reco/gstr2b/zoho
func (h *RecoHandler) ReconcileZoho(c *gin.Context) {
	h.reconcile(c, domain.BooksFormatZoho)
}

func (h *RecoHandler) reconcile(c *gin.Context, format domain.BooksFormat) {
	files := &openFiles{}
	defer files.Close()

	input := &service.RecoInput{
		Format:      format,
		RequestedBy: middleware.GetSubject(c),
		NotifyEmail: strings.TrimSpace(c.PostForm(fieldNotifyEmail)),
	}

	var err error
	if input.Portal, err = h.formUpload(c, fieldPortal, files); err != nil {
		HandleError(c, err)
		return
	}
	switch format {
	case domain.BooksFormatOdoo:
		slots := []struct {
			field string
			dst   **ingest.Upload
		}{
			{fieldOdooRegCGST, &input.Odoo.RegularCGST},
			{fieldOdooRegIGST, &input.Odoo.RegularIGST},
			{fieldOdooRCMCGST, &input.Odoo.RCMCGST},
			{fieldOdooRCMIGST, &input.Odoo.RCMIGST},
		}
		for _, s := range slots {
			if *s.dst, err = h.formUpload(c, s.field, files); err != nil {
				HandleError(c, err)
				return
			}
		}
	case domain.BooksFormatZoho:
		if input.Zoho, err = h.formUpload(c, fieldZoho, files); err != nil {
			HandleError(c, err)
			return
		}
	}

	if raw := strings.TrimSpace(c.PostForm(fieldPeriodStart)); raw != "" {
		t, err := time.Parse(periodLayout, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_PERIOD_START", "period_start must be YYYY-MM-DD")
			return
		}
		input.PeriodStart = &t
	}

	if input.Offset, err = parseOffsetForm(c); err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.recoService.Run(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, out)
}

// formUpload opens an optional multipart file. A missing field yields nil.
func (h *RecoHandler) formUpload(c *gin.Context, field string, files *openFiles) (*ingest.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %v: %w", field, err, domain.ErrInvalidInput)
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return nil, fmt.Errorf("%s: %w", field, domain.ErrFileTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", field, err)
	}
	files.add(f)
	return &ingest.Upload{Filename: fh.Filename, Body: f}, nil
}

// parseOffsetForm returns nil when no offset field was submitted.
func parseOffsetForm(c *gin.Context) (*domain.OffsetInput, error) {
	var in domain.OffsetInput
	seen := false
	for _, f := range offsetFields {
		raw := strings.TrimSpace(c.PostForm(f.name))
		if raw == "" {
			continue
		}
		seen = true
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number: %w", f.name, domain.ErrInvalidInput)
		}
		if f.opening {
			in.OpeningCredit.Set(f.head, d)
		} else {
			in.OutputLiability.Set(f.head, d)
		}
	}
	if !seen {
		return nil, nil
	}
	return &in, nil
}

type openFiles struct {
	files []multipart.File
}

func (o *openFiles) add(f multipart.File) {
	o.files = append(o.files, f)
}

func (o *openFiles) Close() {
	for _, f := range o.files {
		_ = f.Close()
	}
}
