package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cad-exporter/internal/common/config"
	"cad-exporter/internal/common/middleware"
	"cad-exporter/internal/exporter/dxf"
	"cad-exporter/internal/exporter/ifc"
	"cad-exporter/internal/exporter/models"
)

// ============================================================
// Export Handlers
// ============================================================

const (
	ContentTypeIFC = "application/x-step"
	ContentTypeDXF = "application/dxf"
)

// Exporter отдаёт IFC и DXF по списку элементов из тела запроса.
type Exporter struct {
	defaults config.ExportConfig
	log      *zap.Logger
}

func NewExporter(defaults config.ExportConfig, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{defaults: defaults, log: log}
}

// Register вешает маршруты выгрузки на router.
func (h *Exporter) Register(r fiber.Router) {
	r.Post("/export/ifc", h.ExportIFC)
	r.Post("/export/dxf", h.ExportDXF)
}

// ExportIFC собирает STEP документ.
// Тело не JSON: 400. Документ не прошёл проверку: 500 с именем проверки в ответе.
func (h *Exporter) ExportIFC(c fiber.Ctx) error {
	exportID := uuid.NewString()
	c.Set(middleware.ExportIDHeader, exportID)
	log := h.log.With(zap.String("export_id", exportID))

	req, err := h.decode(c)
	if err != nil {
		log.Warn("[EXPORT] bad request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	opts := ifc.FromSettings(h.defaults.IFC.Merge(req.IFC))
	opts.Logger = log

	text, err := ifc.BuildModel(req.ProjectName, req.Elements, opts)
	if err != nil {
		checks := ifc.FailedChecks(err)
		log.Error("[EXPORT] ifc validation failed", zap.Strings("checks", checks))

		var verr *ifc.ValidationError
		check := ""
		if errors.As(err, &verr) {
			check = verr.Check
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"check": check,
		})
	}

	log.Info("[EXPORT] ifc done",
		zap.String("project", req.ProjectName),
		zap.Int("elements", len(req.Elements)),
		zap.Int("bytes", len(text)))

	c.Set(fiber.HeaderContentType, ContentTypeIFC)
	c.Set(fiber.HeaderContentDisposition, attachment(ifc.FileName(req.ProjectName)))
	return c.SendString(text)
}

// ExportDXF собирает DXF документ в Windows-1252. Ошибок сборки не бывает.
func (h *Exporter) ExportDXF(c fiber.Ctx) error {
	exportID := uuid.NewString()
	c.Set(middleware.ExportIDHeader, exportID)
	log := h.log.With(zap.String("export_id", exportID))

	req, err := h.decode(c)
	if err != nil {
		log.Warn("[EXPORT] bad request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	opts := dxf.FromSettings(h.defaults.DXF.Merge(req.DXF))
	opts.Logger = log

	data := dxf.Encode(dxf.Build(req.Elements, opts))

	log.Info("[EXPORT] dxf done",
		zap.String("project", req.ProjectName),
		zap.Int("elements", len(req.Elements)),
		zap.Int("bytes", len(data)))

	c.Set(fiber.HeaderContentType, ContentTypeDXF)
	c.Set(fiber.HeaderContentDisposition, attachment(dxf.FileName(req.ProjectName)))
	return c.Send(data)
}

func (h *Exporter) decode(c fiber.Ctx) (models.ExportRequest, error) {
	var req models.ExportRequest
	body := c.Body()
	if len(body) == 0 {
		return req, errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if req.ProjectName == "" {
		req.ProjectName = h.defaults.ProjectName
	}
	req.ProjectName = models.ProjectName(req.ProjectName)
	return req, nil
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
