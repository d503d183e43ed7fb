package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/model"
	"studentperf_backend/internals/features/performance/service"
	helper "studentperf_backend/internals/helpers"
)

type AnalyticsController struct {
	DB      *gorm.DB
	Service *service.AnalyticsService
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{
		DB:      db,
		Service: service.NewAnalyticsService(db, log.Default()),
	}
}

// ClassOverview
// GET /api/v1/class/overview — data dashboard agregat.
func (ctl *AnalyticsController) ClassOverview(c *fiber.Ctx) error {
	overview, err := ctl.Service.ClassOverview(c.UserContext())
	if err != nil {
		log.Printf("[ERROR] building class overview: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to build class overview")
	}
	return helper.JsonOK(c, "ok", overview)
}

// ListSubjects
// GET /api/v1/subjects
func (ctl *AnalyticsController) ListSubjects(c *fiber.Ctx) error {
	var subjects []model.SubjectModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Order("subject_name ASC").
		Find(&subjects).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to retrieve subjects")
	}
	return helper.JsonOK(c, "ok", subjects)
}
