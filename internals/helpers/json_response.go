// file: internals/helpers/json_response.go
package helper

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Pagination type & defaults
=================================*/

type Pagination struct {
	Page           int   `json:"page"`
	PerPage        int   `json:"per_page"`
	Total          int64 `json:"total"`
	TotalPages     int   `json:"total_pages"`
	HasNext        bool  `json:"has_next"`
	HasPrev        bool  `json:"has_prev"`
	Count          int   `json:"count"`                      // jumlah item di halaman ini
	PerPageOptions []int `json:"per_page_options,omitempty"` // opsi per_page yg disarankan
}

var defaultPerPageOptions = []int{10, 25, 50, 100, 200}

/* ===============================
   Paging resolver (query → page/perPage/offset)
=================================*/

type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging membaca ?page= & ?per_page= (atau alias ?limit=) dan normalisasi.
// - defaultPerPage: fallback kalau tidak ada/invalid
// - maxPerPage: batasi per_page maksimum (0 = tanpa batas)
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	pageStr := strings.TrimSpace(c.Query("page", "1"))

	// dukung dua nama: per_page (utama) atau limit (alias lama)
	perPageStr := strings.TrimSpace(c.Query("per_page"))
	if perPageStr == "" {
		perPageStr = strings.TrimSpace(c.Query("limit", strconv.Itoa(defaultPerPage)))
	}

	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(perPageStr)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}

	offset := (page - 1) * perPage

	return Paging{
		Page:    page,
		PerPage: perPage,
		Offset:  offset,
		Limit:   perPage,
	}
}

func BuildPaginationFromPage(total int64, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage)) // ceil
	if totalPages == 0 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func lenOf(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len()
	default:
		return 0
	}
}

/* ===============================
   Error helpers (standard shape)
=================================*/

type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

func statusToErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusConflict:
		return "CONFLICT"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

// JsonError: error generic (bukan validasi)
func JsonError(c *fiber.Ctx, status int, message string) error {
	if strings.TrimSpace(message) == "" {
		if fe := fiber.ErrInternalServerError; status == 0 || status >= 500 {
			message = fe.Message
		}
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	resp := ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: statusToErrorCode(status),
	}
	return c.Status(status).JSON(resp)
}

/* ===============================
   JSON responses (standard success)
=================================*/

// JsonList: list dengan pagination (GET /list dsb)
func JsonList(c *fiber.Ctx, message string, data any, pagination Pagination) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	if pagination.Count == 0 {
		pagination.Count = lenOf(data)
	}
	if len(pagination.PerPageOptions) == 0 {
		pagination.PerPageOptions = append([]int(nil), defaultPerPageOptions...)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    message,
		"data":       data,
		"pagination": pagination,
	})
}

// JsonOK: response sukses generic (GET detail, dsb)
func JsonOK(c *fiber.Ctx, message string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
