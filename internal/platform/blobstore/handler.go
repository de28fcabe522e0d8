package blobstore

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves signed download URLs. The /files/ routes are anonymous:
// possession of a valid, unexpired signature is the only credential, which
// is what lets shared-view recipients open attachments.
type Handler struct {
	store  Store
	signer *Signer
}

func NewHandler(store Store, signer *Signer) *Handler {
	return &Handler{store: store, signer: signer}
}

// RegisterRoutes mounts the download route on the Echo instance directly,
// outside any auth group.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/files/:owner/:name", h.handleDownload)
}

func (h *Handler) handleDownload(c echo.Context) error {
	key := c.Param("owner") + "/" + c.Param("name")
	if _, err := ParseKey(key); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid file key"})
	}

	if err := h.signer.Verify(key, c.QueryParam("exp"), c.QueryParam("sig")); err != nil {
		switch {
		case errors.Is(err, ErrURLExpired):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "download link has expired"})
		default:
			return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid download link"})
		}
	}

	rc, obj, err := h.store.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open file"})
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, c.Param("name")))
	c.Response().Header().Set("Cache-Control", "private, no-store")
	return c.Stream(http.StatusOK, obj.ContentType, rc)
}
