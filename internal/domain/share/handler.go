package share

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/blobstore"
)

type Handler struct {
	svc    *Service
	signer *blobstore.Signer
}

func NewHandler(svc *Service, signer *blobstore.Signer) *Handler {
	return &Handler{svc: svc, signer: signer}
}

// RegisterRoutes mounts the owner-side share routes on the authenticated
// group and the anonymous shared view on the Echo instance directly. A link
// recipient has no session, so /shared/ must stay outside auth.
func (h *Handler) RegisterRoutes(api *echo.Group, e *echo.Echo) {
	api.POST("/share", h.CreateShare)
	api.GET("/share", h.ActiveShare)
	api.DELETE("/share", h.CancelShare)

	e.GET("/shared/:token", h.ResolveShared)
}

type createShareRequest struct {
	RecordIDs []uuid.UUID `json:"record_ids"`
}

func (h *Handler) CreateShare(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	var req createShareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	share, err := h.svc.CreateShare(c.Request().Context(), ownerID, req.RecordIDs)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptySelection):
			return echo.NewHTTPError(http.StatusBadRequest, "select at least one record to share")
		case errors.Is(err, ErrForeignSelection):
			return echo.NewHTTPError(http.StatusBadRequest, "selection contains unknown records")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, share)
}

func (h *Handler) ActiveShare(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	share, ok := h.svc.ActiveShare(ownerID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no active share")
	}
	return c.JSON(http.StatusOK, share)
}

func (h *Handler) CancelShare(c echo.Context) error {
	ownerID, err := auth.CurrentUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}
	h.svc.CancelShare(ownerID)
	return c.NoContent(http.StatusNoContent)
}

// sharedRecordResponse adds a signed download URL to the public projection.
type sharedRecordResponse struct {
	*SharedRecord
	FileURL string `json:"file_url,omitempty"`
}

type resolvedResponse struct {
	Requested int                    `json:"requested"`
	Resolved  int                    `json:"resolved"`
	Records   []sharedRecordResponse `json:"records"`
}

func (h *Handler) ResolveShared(c echo.Context) error {
	view, err := h.svc.Resolve(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid share link")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load shared records")
	}

	// Zero resolution is the only expiry signal an anonymous viewer gets:
	// the ids did not resolve, which is indistinguishable from a stale link.
	if view.Resolved == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "records not found or access expired")
	}

	records := make([]sharedRecordResponse, 0, len(view.Records))
	for _, rec := range view.Records {
		resp := sharedRecordResponse{SharedRecord: rec}
		if rec.FileKey != nil {
			resp.FileURL = h.signer.SignedURL(*rec.FileKey)
		}
		records = append(records, resp)
	}
	return c.JSON(http.StatusOK, resolvedResponse{
		Requested: view.Requested,
		Resolved:  view.Resolved,
		Records:   records,
	})
}
