package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/dto"
	"studentperf_backend/internals/features/performance/service"
	helper "studentperf_backend/internals/helpers"
)

type UploadController struct {
	DB      *gorm.DB
	Service *service.UploadService
}

func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{
		DB:      db,
		Service: service.NewUploadService(db, log.Default()),
	}
}

// UploadSubject
// POST /api/v1/upload/subject (multipart/form-data)
// File + metadata masuk, pipeline jalan satu transaksi, report keluar.
func (ctl *UploadController) UploadSubject(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "No file provided")
	}
	if fileHeader.Filename == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "No file selected")
	}
	if !service.AllowedWorkbookFile(fileHeader.Filename) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid file type. Only Excel files (.xlsx, .xls) are allowed")
	}

	var req dto.UploadSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form payload")
	}
	req.Normalize()

	// pesan spesifik dulu (kompatibel frontend lama), baru validator
	if req.SubjectName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Subject name is required")
	}
	if req.Year == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Year is required")
	}
	if req.Section == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Section is required")
	}
	if err := validator.New().Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Error reading uploaded file")
	}
	defer src.Close()

	report, err := ctl.Service.ProcessUpload(c.UserContext(), src, req.ToInput())
	if err != nil {
		return uploadErrorResponse(c, err)
	}

	return helper.JsonOK(c, "File processed successfully", report)
}

// uploadErrorResponse memetakan taksonomi error pipeline ke status HTTP:
// fatal batch yang disebabkan input user → 400, sisanya → 500.
func uploadErrorResponse(c *fiber.Ctx, err error) error {
	var missingCols *service.MissingColumnsError
	switch {
	case errors.Is(err, service.ErrEmptyDataset),
		errors.Is(err, service.ErrCorruptWorkbook),
		errors.Is(err, service.ErrNoSheets),
		errors.Is(err, service.ErrNoHeader),
		errors.Is(err, service.ErrMissingMetadata),
		errors.As(err, &missingCols):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] processing upload: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Error processing Excel file: "+err.Error())
	}
}
