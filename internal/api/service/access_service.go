package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// DownloadPath is where signed links point, relative to the public base URL.
const DownloadPath = "/v1/files/download"

// accessService mints signed links for owners.
type accessService struct {
	core     *FileServiceImpl
	metadata *metadataService
}

func newAccessService(core *FileServiceImpl, metadata *metadataService) *accessService {
	return &accessService{core: core, metadata: metadata}
}

func (s *accessService) signedURL(ctx context.Context, req domain.SignRequest) (domain.SignedURL, error) {
	ttl, err := s.resolveTTL(req.TTL)
	if err != nil {
		return domain.SignedURL{}, err
	}

	rec, err := s.metadata.getOwned(ctx, req.FileID, req.RequesterID)
	if err != nil {
		return domain.SignedURL{}, err
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = rec.FileName
	}

	token, err := s.core.signer.Sign(rec.ID, ttl, label)
	if err != nil {
		return domain.SignedURL{}, fmt.Errorf("failed to sign url: %w", err)
	}

	link := strings.TrimRight(s.core.cfg.Server.PublicBaseURL, "/") + DownloadPath + "?" + token.Query().Encode()
	out := domain.SignedURL{
		URL:       link,
		ExpiresAt: time.Unix(token.ExpiresAt, 0).UTC(),
		Text:      link,
	}
	if req.Markdown {
		out.Text = MarkdownLink(label, link)
	}

	logger.Infow("Signed url issued", "file_id", rec.ID, "requester_id", req.RequesterID, "expires_at", token.ExpiresAt)
	return out, nil
}

// resolveTTL applies the default for zero and enforces the configured bounds.
func (s *accessService) resolveTTL(ttl time.Duration) (time.Duration, error) {
	def, lo, hi := s.core.ttlBounds()
	if ttl == 0 {
		return def, nil
	}
	if ttl < lo || ttl > hi {
		return 0, domain.NewValidationError(domain.ReasonInvalidTTL, "ttl %s outside [%s, %s]", ttl, lo, hi)
	}
	return ttl, nil
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, "\n", " ", "\r", " ")

// MarkdownLink renders [label](<url>). Brackets in the label are escaped and
// the angle-bracket destination keeps query strings intact.
func MarkdownLink(label, link string) string {
	return "[" + markdownEscaper.Replace(label) + "](<" + link + ">)"
}
