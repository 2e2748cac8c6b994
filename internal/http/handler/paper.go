package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"paperapi/internal/service"
)

// sendPaperRequest is the JSON body of the WhatsApp delivery endpoint.
type sendPaperRequest struct {
	PaperID     string `json:"paperId"`
	PhoneNumber string `json:"phoneNumber"`
}

// ListPapers returns the whole catalog, newest exam year first.
//
// @Summary List papers
// @Produce json
// @Success 200 {array} model.Paper
// @Router /api/papers [get]
func ListPapers(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		papers, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "STORE_UNAVAILABLE", "failed to fetch papers")
		}
		return c.JSON(papers)
	}
}

// UploadPaper accepts a multipart submission (title, course, year fields and
// one PDF file part) and creates a catalog record.
//
// @Summary Upload a paper
// @Accept mpfd
// @Produce json
// @Success 201 {object} model.Paper
// @Router /api/papers [post]
func UploadPaper(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no PDF file uploaded")
		}

		year, err := strconv.Atoi(strings.TrimSpace(c.FormValue("year")))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "year must be an integer")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		paper, err := svc.Upload(c.UserContext(), service.UploadInput{
			Title:       c.FormValue("title"),
			Course:      c.FormValue("course"),
			Year:        year,
			File:        f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnsupportedMediaType):
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", "only PDF files are allowed")
			case errors.Is(err, service.ErrFileRequired):
				return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no PDF file uploaded")
			case errors.Is(err, service.ErrInvalidRequest):
				return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "title and course are required")
			case errors.Is(err, service.ErrStorageWrite):
				return writeError(c, fiber.StatusInternalServerError, "STORAGE_WRITE_FAILED", "failed to store file")
			default:
				return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "failed to upload paper")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(paper)
	}
}

// DownloadPaper streams a paper's PDF as an attachment named "<title>.pdf".
//
// @Summary Download a paper
// @Produce application/pdf
// @Param id path string true "Paper ID"
// @Router /api/papers/download/{id} [get]
func DownloadPaper(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		// An id that is not a UUID can never name a record.
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paper not found")
		}

		paper, rc, err := svc.Download(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paper not found")
			case errors.Is(err, service.ErrFileMissing):
				return writeError(c, fiber.StatusNotFound, "FILE_MISSING", "file not found on server")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", paper.Title+".pdf"))
		// fasthttp closes the stream after the response is written.
		return c.SendStream(rc)
	}
}

// SendPaperWhatsApp forwards a paper's PDF to a phone number over the
// messaging bridge.
//
// @Summary Send a paper via WhatsApp
// @Accept json
// @Produce json
// @Router /api/papers/whatsapp [post]
func SendPaperWhatsApp(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req sendPaperRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		}
		// Required-field validation comes before any shape check so that a
		// missing field is reported as a bad request, not a missing paper.
		if req.PaperID == "" || req.PhoneNumber == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "paperId and phoneNumber are required")
		}
		// An id that is not a UUID can never name a record.
		if _, err := uuid.Parse(req.PaperID); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paper not found")
		}

		if err := svc.Deliver(c.UserContext(), req.PaperID, req.PhoneNumber); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidRequest):
				return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "paperId and phoneNumber are required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paper not found")
			case errors.Is(err, service.ErrFileMissing):
				return writeError(c, fiber.StatusNotFound, "FILE_MISSING", "file not found on server")
			case errors.Is(err, service.ErrDeliveryFailed):
				return writeError(c, fiber.StatusInternalServerError, "DELIVERY_FAILED", "failed to send WhatsApp message")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
