package v1

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/storage"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 10 << 20

type UploadInput struct {
	Category    string `path:"category" enum:"tickets,comments,events,avatars,branding" doc:"Storage category"`
	Filename    string `query:"filename" required:"true" minLength:"1" maxLength:"255" doc:"Original file name"`
	ContentType string `header:"Content-Type" doc:"MIME type of the body"`
	RawBody     []byte
}

type UploadOutput struct {
	Body struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
}

type RemoveUploadsInput struct {
	Body struct {
		Paths []string `json:"paths" minItems:"1" maxItems:"100" doc:"Object paths to delete"`
	}
}

type RemoveUploadsOutput struct{}

// mayUpload gates categories that back staff-only content.
func mayUpload(role domain.Role, c storage.Category) bool {
	switch c {
	case storage.CategoryBranding:
		return role.CanManageOffice()
	case storage.CategoryEvents:
		return role.CanManageEvents()
	default:
		return true
	}
}

func RegisterUploadRoutes(api huma.API, uploader Uploader, bucket string) {
	huma.Register(api, huma.Operation{
		OperationID:  "upload-file",
		Method:       http.MethodPost,
		Path:         "/uploads/{category}",
		Summary:      "Upload a file under the office's prefix",
		Tags:         []string{"Uploads"},
		MaxBodyBytes: MaxUploadBytes,
	}, func(ctx context.Context, input *UploadInput) (*UploadOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		category := storage.Category(input.Category)
		if !category.Valid() {
			return nil, problem(ctx, domain.Invalid("category", "invalid_category", "unknown storage category"), "uploads.create")
		}
		if !mayUpload(actor.Role, category) {
			return nil, huma.Error403Forbidden("your role cannot upload to " + input.Category)
		}
		if len(input.RawBody) == 0 {
			return nil, problem(ctx, domain.Invalid("body", "required", "file is empty"), "uploads.create")
		}

		contentType := input.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(input.RawBody)
		}

		objectPath := storage.TenantPath(actor.TenantID, category, input.Filename)
		stored, err := uploader.Upload(ctx, bucket, objectPath, contentType, bytes.NewReader(input.RawBody))
		if err != nil {
			return nil, problem(ctx, err, "uploads.create")
		}

		out := &UploadOutput{}
		out.Body.Path = stored
		out.Body.URL = uploader.PublicURL(bucket, stored)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-uploads",
		Method:        http.MethodDelete,
		Path:          "/uploads",
		Summary:       "Delete files under the office's prefix",
		Tags:          []string{"Uploads"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RemoveUploadsInput) (*RemoveUploadsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		if err := storage.CheckTenantPaths(actor.TenantID, input.Body.Paths); err != nil {
			if errors.Is(err, storage.ErrInvalidPath) {
				err = domain.Invalid("paths", "invalid_path", err.Error())
			}
			return nil, problem(ctx, err, "uploads.remove")
		}

		if err := uploader.Remove(ctx, bucket, input.Body.Paths); err != nil {
			return nil, problem(ctx, err, "uploads.remove")
		}
		return &RemoveUploadsOutput{}, nil
	})
}
