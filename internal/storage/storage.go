// Package storage keeps uploaded files (ticket photos, comment attachments,
// event banners, avatars and office branding) in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the object-storage collaborator.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath, contentType string, body io.ReadSeeker) (string, error)
	PublicURL(bucket, objectPath string) string
	Remove(ctx context.Context, bucket string, paths []string) error
}

// Category is the first path segment under a tenant.
type Category string

const (
	CategoryTickets  Category = "tickets"
	CategoryComments Category = "comments"
	CategoryEvents   Category = "events"
	CategoryAvatars  Category = "avatars"
	CategoryBranding Category = "branding"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTickets, CategoryComments, CategoryEvents, CategoryAvatars, CategoryBranding:
		return true
	default:
		return false
	}
}

var ErrInvalidPath = errors.New("storage: invalid object path")

// TenantPath builds "{tenantID}/{category}/{filename}" with the filename
// reduced to a safe base name.
func TenantPath(tenantID uuid.UUID, category Category, filename string) string {
	return tenantID.String() + "/" + string(category) + "/" + SanitizeFilename(filename)
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore from the
// base name; everything else becomes a dash. Empty results become "file".
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	lastDash := false
	for _, r := range name {
		ok := r == '.' || r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			r = '-'
		}
		if r == '-' && lastDash {
			continue
		}
		lastDash = r == '-'
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "file"
	}
	return out
}

// BelongsTo reports whether objectPath sits under the tenant's prefix.
func BelongsTo(tenantID uuid.UUID, objectPath string) bool {
	if !strings.HasPrefix(objectPath, tenantID.String()+"/") {
		return false
	}
	for _, seg := range strings.Split(objectPath, "/") {
		if seg == ".." || seg == "." {
			return false
		}
	}
	return true
}

// CheckTenantPaths rejects any path outside the tenant's prefix.
func CheckTenantPaths(tenantID uuid.UUID, paths []string) error {
	for _, p := range paths {
		if !BelongsTo(tenantID, p) {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}
