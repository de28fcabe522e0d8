package record

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/blobstore"
	"github.com/medvault/medvault/pkg/pagination"
)

type Handler struct {
	svc    *Service
	signer *blobstore.Signer
}

func NewHandler(svc *Service, signer *blobstore.Signer) *Handler {
	return &Handler{svc: svc, signer: signer}
}

// RegisterRoutes mounts the owner-facing record routes on an authenticated
// group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/records", h.CreateRecord)
	api.GET("/records", h.ListRecords)
	api.GET("/records/:id", h.GetRecord)
	api.PUT("/records/:id", h.UpdateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)
	api.PUT("/records/:id/file", h.UploadFile)
	api.GET("/dashboard/stats", h.DashboardStats)
	api.GET("/dashboard/recent", h.RecentActivity)
}

// recordRequest is the client-controlled subset of record fields.
// Consultation dates travel as plain calendar dates.
type recordRequest struct {
	Title            string  `json:"title"`
	Type             string  `json:"type"`
	Description      *string `json:"description"`
	HospitalName     *string `json:"hospital_name"`
	DoctorName       *string `json:"doctor_name"`
	ConsultationDate *string `json:"consultation_date"`
	IsEmergency      bool    `json:"is_emergency"`
}

func (req *recordRequest) toRecord() (*Record, error) {
	rec := &Record{
		Title:        req.Title,
		Type:         req.Type,
		Description:  req.Description,
		HospitalName: req.HospitalName,
		DoctorName:   req.DoctorName,
		IsEmergency:  req.IsEmergency,
	}
	if req.ConsultationDate != nil && *req.ConsultationDate != "" {
		d, err := time.Parse("2006-01-02", *req.ConsultationDate)
		if err != nil {
			return nil, errors.New("consultation_date must be YYYY-MM-DD")
		}
		rec.ConsultationDate = &d
	}
	return rec, nil
}

// recordResponse wraps a record with its signed download URL, when a file is
// attached.
type recordResponse struct {
	*Record
	FileURL string `json:"file_url,omitempty"`
}

func (h *Handler) toResponse(rec *Record) recordResponse {
	resp := recordResponse{Record: rec}
	if rec.FileKey != nil {
		resp.FileURL = h.signer.SignedURL(*rec.FileKey)
	}
	return resp
}

// listResponse reports both counts so a consumer can distinguish "no
// records at all" from "nothing matches the current filters".
type listResponse struct {
	Data    []recordResponse `json:"data"`
	Total   int              `json:"total"`
	Matched int              `json:"matched"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"has_more"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.OwnerID = ownerID

	if err := h.svc.Create(c.Request().Context(), rec); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, h.toResponse(rec))
}

func (h *Handler) ListRecords(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	records, err := h.svc.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return toHTTPError(err)
	}

	filter := Filter{
		Search:           c.QueryParam("search"),
		Type:             c.QueryParam("type"),
		ConsultationDate: c.QueryParam("date"),
		EmergencyOnly:    c.QueryParam("emergency") == "true",
	}
	filtered := ApplyFilter(records, filter)

	// Page the filtered slice; filtering happens before pagination so the
	// matched count reflects the whole result set.
	page := pagination.FromContext(c)
	start := page.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + page.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	data := make([]recordResponse, 0, end-start)
	for _, rec := range filtered[start:end] {
		data = append(data, h.toResponse(rec))
	}
	return c.JSON(http.StatusOK, listResponse{
		Data:    data,
		Total:   len(records),
		Matched: len(filtered),
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasNext(len(filtered)),
	})
}

func (h *Handler) GetRecord(c echo.Context) error {
	rec, err := h.ownedRecord(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(rec))
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	rec, err := h.ownedRecord(c)
	if err != nil {
		return err
	}

	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	update, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	update.ID = rec.ID

	updated, err := h.svc.Update(c.Request().Context(), update)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, h.toResponse(updated))
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	rec, err := h.ownedRecord(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), rec.ID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UploadFile(c echo.Context) error {
	rec, err := h.ownedRecord(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	updated, err := h.svc.AttachFile(c.Request().Context(), rec.ID,
		file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, h.toResponse(updated))
}

func (h *Handler) DashboardStats(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	stats, err := h.svc.DashboardStats(c.Request().Context(), ownerID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) RecentActivity(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	records, err := h.svc.RecentActivity(c.Request().Context(), ownerID, limit)
	if err != nil {
		return toHTTPError(err)
	}
	data := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, h.toResponse(rec))
	}
	return c.JSON(http.StatusOK, data)
}

// ownedRecord loads the path record and checks it belongs to the session
// user. A foreign record reads as absent rather than forbidden.
func (h *Handler) ownedRecord(c echo.Context) (*Record, error) {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if rec.OwnerID != ownerID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return rec, nil
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
