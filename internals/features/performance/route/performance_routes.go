package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studentperf_backend/internals/features/performance/controller"
)

// PerformanceRoutes memasang seluruh endpoint fitur performance di bawah
// group /api/v1.
func PerformanceRoutes(api fiber.Router, db *gorm.DB) {
	uploadCtl := controller.NewUploadController(db)
	studentCtl := controller.NewStudentController(db)
	analyticsCtl := controller.NewAnalyticsController(db)

	upload := api.Group("/upload")
	upload.Post("/subject", uploadCtl.UploadSubject)

	students := api.Group("/students")
	students.Get("/", studentCtl.ListStudents)
	students.Get("/:roll", studentCtl.GetStudentByRoll)

	api.Get("/subjects", analyticsCtl.ListSubjects)
	api.Get("/class/overview", analyticsCtl.ClassOverview)
}
