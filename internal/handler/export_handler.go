package handler

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/service/audit"
	"compliance-platform/internal/service/export"
)

type ExportHandler struct {
	exportSvc export.Service
	auditSvc  audit.Service
}

func NewExportHandler(exportSvc export.Service, auditSvc audit.Service) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, auditSvc: auditSvc}
}

func sendCSV(c *fiber.Ctx, fileName string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) RegulationsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exportSvc.RegulationsCSV(c.Context(), &buf); err != nil {
		return err
	}
	return sendCSV(c, "regulations.csv", &buf)
}

func (h *ExportHandler) RegulationsXLSX(c *fiber.Ctx) error {
	f, err := h.exportSvc.RegulationsXLSX(c.Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="regulations.xlsx"`)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) ComplianceSummaryCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.exportSvc.ComplianceSummaryCSV(c.Context(), &buf); err != nil {
		return err
	}
	return sendCSV(c, "compliance-summary.csv", &buf)
}

func (h *ExportHandler) AuditLogsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.auditSvc.ExportCSV(c.Context(), auditFilterFromQuery(c), &buf); err != nil {
		return err
	}
	return sendCSV(c, "audit-logs.csv", &buf)
}
