package http_handler

import "github.com/anthanhphan/go-file-gateway/internal/api/domain"

type FileResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	FileName  string `json:"filename"`
	Purpose   string `json:"purpose"`
}

type FileListResponse struct {
	Object string         `json:"object"`
	Data   []FileResponse `json:"data"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
	Text      string `json:"text"`
}

func toFileResponse(rec domain.FileRecord) FileResponse {
	return FileResponse{
		ID:        rec.ID,
		Object:    domain.ObjectType,
		Bytes:     rec.SizeBytes,
		CreatedAt: rec.CreatedAt.Unix(),
		FileName:  rec.FileName,
		Purpose:   string(rec.Purpose),
	}
}
