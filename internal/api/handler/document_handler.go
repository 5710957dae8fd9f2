package handler

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

// uploadField is the multipart field that carries uploaded files.
const uploadField = "files"

type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Create stores a document record.
//
// @Summary      Create document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        body  body      createDocumentRequest  true  "Document"
// @Success      201   {object}  domain.Document
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c echo.Context) error {
	var req createDocumentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	doc, err := h.service.Create(c.Request().Context(), toCreateDocumentInput(req))
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("document").Inc()
	return c.JSON(http.StatusCreated, doc)
}

// Upload stores the files of a multipart request, one document per file.
//
// @Summary      Upload documents
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Files to upload"
// @Success      201    {array}   domain.Document
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/files/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: expected multipart form with %q", domain.ErrValidation, uploadField)
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return fmt.Errorf("%w: no files uploaded", domain.ErrValidation)
	}

	files := make([]ports.UploadedFile, 0, len(headers))
	var total int64
	for _, fh := range headers {
		files = append(files, toUploadedFile(fh))
		total += fh.Size
	}

	docs, err := h.service.Upload(c.Request().Context(), files)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("document").Add(float64(len(docs)))
	metrics.UploadBytesTotal.Add(float64(total))
	return c.JSON(http.StatusCreated, docs)
}

func toUploadedFile(fh *multipart.FileHeader) ports.UploadedFile {
	return ports.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// List returns every document.
//
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Success      200  {array}   domain.Document
// @Failure      401  {object}  errorResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	docs, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

// Get returns one document.
//
// @Summary      Get document
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  errorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Download streams the stored file of a document.
//
// @Summary      Download document file
// @Tags         documents
// @Produce      octet-stream
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /api/documents/{id}/file [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	rc, info, err := h.service.OpenFile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}))
	return c.Stream(http.StatusOK, contentType, rc)
}

// Delete removes a document and its stored file.
//
// @Summary      Delete document
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.WithLabelValues("document").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "document deleted"})
}
