package http_handler

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleUpload(c *fiber.Ctx) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}
	// user_id is optional; when sent it must name the token subject. Other
	// client fields (file_type, description, metadata) are ignored.
	if userID := c.FormValue("user_id"); userID != "" && userID != requester {
		logger.Warnw("Upload for another user rejected", "requester_id", requester)
		return domain.ErrForbidden
	}

	header, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError(domain.ReasonEmptyFile, "multipart field \"file\" is required")
	}
	if header.Size > s.cfg.App.MaxUploadBytes {
		return domain.NewValidationError(domain.ReasonTooLarge, "file exceeds %d bytes", s.cfg.App.MaxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}
	defer f.Close()

	// One extra byte lets the service see an oversized stream.
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.App.MaxUploadBytes+1))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}

	rec, err := s.service.Upload(c.UserContext(), domain.UploadInput{
		OwnerID:  requester,
		Purpose:  c.FormValue("purpose"),
		FileName: header.Filename,
		Data:     data,
	})
	if err != nil {
		return err
	}

	logger.Infow("File uploaded", "file_id", rec.ID, "owner_id", rec.OwnerID, "bytes", rec.SizeBytes)
	return c.Status(fiber.StatusCreated).JSON(toFileResponse(rec))
}

func (s *Server) handleList(c *fiber.Ctx) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}

	recs, err := s.service.List(c.UserContext(), requester, domain.Purpose(c.Query("purpose")))
	if err != nil {
		return err
	}

	resp := FileListResponse{Object: "list", Data: make([]FileResponse, 0, len(recs))}
	for _, rec := range recs {
		resp.Data = append(resp.Data, toFileResponse(rec))
	}
	return c.JSON(resp)
}

func (s *Server) handleGetFile(c *fiber.Ctx) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}

	rec, err := s.service.GetFile(c.UserContext(), c.Params("id"), requester)
	if err != nil {
		return err
	}
	return c.JSON(toFileResponse(rec))
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if err := s.service.Delete(c.UserContext(), id, requester); err != nil {
		return err
	}
	return c.JSON(DeleteResponse{ID: id, Object: domain.ObjectType, Deleted: true})
}

func (s *Server) handleSignedURL(c *fiber.Ctx) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if raw := c.Query("ttl_seconds"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs <= 0 {
			return domain.NewValidationError(domain.ReasonInvalidTTL, "ttl_seconds must be a positive integer")
		}
		// Bound before converting so huge values cannot wrap around.
		if maxTTL := int64(s.cfg.Signing.MaxTTLSeconds); secs > maxTTL {
			return domain.NewValidationError(domain.ReasonInvalidTTL, "ttl_seconds must not exceed %d", maxTTL)
		}
		ttl = time.Duration(secs) * time.Second
	}

	markdown := false
	if raw := c.Query("markdown"); raw != "" {
		markdown, err = strconv.ParseBool(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "markdown must be a boolean")
		}
	}

	signed, err := s.service.GetSignedURL(c.UserContext(), domain.SignRequest{
		FileID:      c.Params("id"),
		RequesterID: requester,
		Label:       c.Query("label"),
		TTL:         ttl,
		Markdown:    markdown,
	})
	if err != nil {
		return err
	}

	return c.JSON(SignedURLResponse{
		URL:       signed.URL,
		ExpiresAt: signed.ExpiresAt.Unix(),
		Text:      signed.Text,
	})
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return domain.ErrSignature
	}

	dl, err := s.service.Download(c.UserContext(), query, c.Query("disposition") == "attachment")
	if err != nil {
		if errors.Is(err, domain.ErrSignature) {
			// Keep signed links out of shared caches even on failure.
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		return err
	}

	c.Set(fiber.HeaderContentType, dl.MimeType)
	c.Set(fiber.HeaderContentDisposition, dl.Disposition)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Send(dl.Data)
}
