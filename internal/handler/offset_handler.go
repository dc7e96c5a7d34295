package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gstreco/internal/domain"
	"gstreco/internal/service"
)

// OffsetHandler handles the stand-alone set-off calculator.
type OffsetHandler struct {
	offsetService service.OffsetService
}

// NewOffsetHandler creates a new OffsetHandler.
func NewOffsetHandler(offsetService service.OffsetService) *OffsetHandler {
	return &OffsetHandler{offsetService: offsetService}
}

type offsetRequest struct {
	Liability domain.TaxVector `json:"liability"`
	Credit    domain.TaxVector `json:"credit"`
}

// Calculate handles POST /api/v1/offset
func (h *OffsetHandler) Calculate(c *gin.Context) {
	var req offsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := h.offsetService.Calculate(req.Liability, req.Credit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}
