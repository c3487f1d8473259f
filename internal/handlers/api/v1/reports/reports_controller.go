package reports

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing
const maxUploadMemory = 10 << 20

// ReportController handles waste report and pickup API endpoints
type ReportController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewReportController creates a new report controller
func NewReportController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
) *ReportController {
	return &ReportController{
		services: sc,
		logger:   logger,
		builder:  builder,
	}
}

// ===============================
// CRUD
// ===============================

// CreateReport handles POST /api/v1/reports. Accepts JSON, or
// multipart form data when the report carries a photo.
//
//	@Summary	Submit a waste report
//	@Tags		reports
//	@Security	SessionAuth
//	@Success	201	{object}	response.APIResponse
//	@Router		/api/v1/reports [post]
func (c *ReportController) CreateReport(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	var req services.CreateReportRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := c.parseMultipartReport(r, &req); err != nil {
			c.builder.WriteError(w, r, err)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
			return
		}
	}
	req.UserID = userID
	if req.Image != nil {
		req.Image.UserID = userID
	}

	report, err := c.services.ReportService.CreateReport(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, report)
}

// GetReport handles GET /api/v1/reports/{id}
func (c *ReportController) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	report, err := c.services.ReportService.GetReportByID(r.Context(), reportID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, report)
}

// UpdateReport handles PUT /api/v1/reports/{id}
func (c *ReportController) UpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ReportID = reportID
	req.UserID = contextutils.GetUserID(r.Context())

	report, err := c.services.ReportService.UpdateReport(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, report)
}

// DeleteReport handles DELETE /api/v1/reports/{id}
func (c *ReportController) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	userID := contextutils.GetUserID(r.Context())
	if err := c.services.ReportService.DeleteReport(r.Context(), reportID, userID); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// ===============================
// LISTING
// ===============================

// ListReports handles GET /api/v1/reports
func (c *ReportController) ListReports(w http.ResponseWriter, r *http.Request) {
	req := services.ListReportsRequest{Pagination: response.ParsePagination(r)}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	page, err := c.services.ReportService.ListReports(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// GetMyReports handles GET /api/v1/reports/mine
func (c *ReportController) GetMyReports(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	page, err := c.services.ReportService.GetReportsByUser(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// GetPickupTasks handles GET /api/v1/pickups for the logged-in agent
func (c *ReportController) GetPickupTasks(w http.ResponseWriter, r *http.Request) {
	collectorID := contextutils.GetUserID(r.Context())
	page, err := c.services.ReportService.GetPickupTasks(r.Context(), collectorID, response.ParsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// ===============================
// LIFECYCLE
// ===============================

// UpdateStatus handles PUT /api/v1/reports/{id}/status
func (c *ReportController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	req := services.UpdateReportStatusRequest{
		ReportID:  reportID,
		ActorID:   contextutils.GetUserID(r.Context()),
		ActorRole: contextutils.GetUserRole(r.Context()),
		Status:    body.Status,
	}

	report, err := c.services.ReportService.UpdateReportStatus(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, report)
}

// AssignPickup handles POST /api/v1/reports/{id}/assign
func (c *ReportController) AssignPickup(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var body struct {
		CollectorID int64 `json:"collector_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	report, err := c.services.ReportService.AssignPickup(r.Context(), &services.AssignPickupRequest{
		ReportID:    reportID,
		CollectorID: body.CollectorID,
	})
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, report)
}

// CompletePickup handles POST /api/v1/reports/{id}/complete. The
// logged-in agent must be the assigned collector.
func (c *ReportController) CompletePickup(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	report, err := c.services.ReportService.CompletePickup(r.Context(), &services.CompletePickupRequest{
		ReportID:    reportID,
		CollectorID: contextutils.GetUserID(r.Context()),
	})
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, report)
}

// ===============================
// HELPERS
// ===============================

// parseMultipartReport extracts report fields and an optional image
// from a multipart form.
func (c *ReportController) parseMultipartReport(r *http.Request, req *services.CreateReportRequest) error {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return services.NewValidationError("invalid multipart form", err)
	}

	req.Location = r.FormValue("location")
	req.WasteType = r.FormValue("waste_type")
	req.Amount = r.FormValue("amount")

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return services.NewValidationError("invalid image upload", err)
	}

	req.Image = &services.FileUploadRequest{
		File:        file,
		FileName:    header.Filename,
		FileSize:    header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Folder:      "reports",
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
