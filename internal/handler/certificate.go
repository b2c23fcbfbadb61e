package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_management/internal/service"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type CertificateHandler struct {
	certificateService service.CertificateService
	log                logger.Logger
}

func NewCertificateHandler(certificateService service.CertificateService, log logger.Logger) *CertificateHandler {
	return &CertificateHandler{
		certificateService: certificateService,
		log:                log,
	}
}

// Issue serves GET /events/:id/certificate?user=<id> as a PDF download.
func (h *CertificateHandler) Issue(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Query("user"))
	if err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrBadRequest, "query parameter user must be a user id"))
		return
	}

	cert, pdf, err := h.certificateService.Issue(c.Request.Context(), currentUserID(c), eventID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("X-Certificate-ID", cert.ID.String())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, cert.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
