// Package metadata validates mint metadata and produces its token URI.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

var validate = validator.New()

// Parse decodes and validates a metadata document.
func Parse(data []byte) (*domain.MintMetadata, error) {
	var md domain.MintMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput,
			fmt.Sprintf("failed to parse metadata: %v", err), nil)
	}
	if err := Validate(&md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Validate requires name, description and image, and a trait type on every
// attribute.
func Validate(md *domain.MintMetadata) error {
	md.Name = strings.TrimSpace(md.Name)
	md.Description = strings.TrimSpace(md.Description)
	md.Image = strings.TrimSpace(md.Image)

	if err := validate.Struct(md); err != nil {
		return domain.NewError(domain.ErrInvalidInput,
			fmt.Sprintf("metadata validation failed: %v", err), nil)
	}
	return nil
}

// Uploader stores a metadata document and returns its token URI.
type Uploader interface {
	Upload(ctx context.Context, md *domain.MintMetadata) (string, error)
}

// StubUploader does not store anything. It returns a unique placeholder URI
// of the form ipfs://Qm<id>/<unix-millis>.
type StubUploader struct {
	Now func() time.Time
}

func (u StubUploader) Upload(ctx context.Context, md *domain.MintMetadata) (string, error) {
	if err := Validate(md); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("ipfs://Qm%s/%d", id, now().UnixMilli()), nil
}
