package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

// DefaultMaxUploadBytes matches the server's default body limit
const DefaultMaxUploadBytes = 32 * 1024 * 1024

// readUpload reads one multipart file part. Transport problems (missing
// part, empty or oversized file) come back as invalid. The content is not
// inspected: undecodable images are the recognizer's business.
func readUpload(c *fiber.Ctx, field string, maxBytes int64, invalid *domain.AppError) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, invalid.WithError(err)
	}

	if file.Size == 0 || file.Size > maxBytes {
		return nil, invalid
	}

	f, err := file.Open()
	if err != nil {
		return nil, invalid.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return nil, invalid.WithError(err)
	}

	return data, nil
}
