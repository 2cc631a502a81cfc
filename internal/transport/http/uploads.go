package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jpdataXOR/hrdesk/internal/service"
)

// UploadFiles ingests a multipart batch into the customer's vector index.
// POST /v1/customers/:customer_id/files
func (h *Handler) UploadFiles(c echo.Context) error {
	customerID := c.Param("customer_id")

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart form required"})
	}

	var uploads []service.Upload
	for _, fileHeader := range form.File["files"] {
		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to open upload: " + fileHeader.Filename})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read upload: " + fileHeader.Filename})
		}
		uploads = append(uploads, service.Upload{
			Filename:  fileHeader.Filename,
			MediaType: fileHeader.Header.Get("Content-Type"),
			Data:      data,
		})
	}

	summary, err := h.service.IngestBatch(c.Request().Context(), customerID, uploads)
	if err != nil {
		if summary != nil {
			// Partial progress happened before the failure; report both.
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"error":   err.Error(),
				"summary": summary,
			})
		}
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// ListIndexFiles returns the customer's vector index membership.
// GET /v1/customers/:customer_id/files
func (h *Handler) ListIndexFiles(c echo.Context) error {
	customerID := c.Param("customer_id")

	files, err := h.service.ListIndexFiles(c.Request().Context(), customerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"files": files,
	})
}

// DeleteFile removes a file from the gateway's file store. The page re-lists
// the index afterwards; the remote listing is authoritative.
// DELETE /v1/files/:file_id
func (h *Handler) DeleteFile(c echo.Context) error {
	fileID := c.Param("file_id")

	if err := h.service.RemoveIndexFile(c.Request().Context(), fileID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"deleted": fileID})
}

// BindIndex points the customer's assistant at the customer's vector index.
// POST /v1/customers/:customer_id/bind
func (h *Handler) BindIndex(c echo.Context) error {
	customerID := c.Param("customer_id")

	customer, ok := h.service.Customer(customerID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown customer"})
	}

	if err := h.service.BindIndex(c.Request().Context(), customer.AssistantID, customer.IndexID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"assistant_id": customer.AssistantID,
		"index_id":     customer.IndexID,
	})
}
