package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	responder
	dashboardService *service.DashboardService
	reportService    *service.ReportService
}

func NewReportHandler(dashboardService *service.DashboardService, reportService *service.ReportService, tr *i18n.Translator) *ReportHandler {
	return &ReportHandler{
		responder:        responder{tr: tr},
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

// Dashboard returns the counters, the activity feed and alerts rendered in
// the request locale.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	for i, a := range summary.Alerts {
		summary.Alerts[i].Message = h.message(c, a.Key, a.Params...)
	}
	utils.SuccessResponse(c, summary)
}

func (h *ReportHandler) Citizens(c *gin.Context) {
	report, err := h.reportService.Citizens(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, report)
}

func (h *ReportHandler) Cards(c *gin.Context) {
	report, err := h.reportService.Cards(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, report)
}

func (h *ReportHandler) Institutions(c *gin.Context) {
	report, err := h.reportService.Institutions(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, report)
}

// Export streams every report as one xlsx workbook. The workbook is built
// in memory first so a failure can still be reported as JSON.
func (h *ReportHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.Export(c.Request.Context(), &buf); err != nil {
		h.fail(c, err, "")
		return
	}
	name := fmt.Sprintf("nfc-reports-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
