/*
Package storage resolves stored photo references into URLs clients can load.

Profiles keep either an absolute URL or an object key in an S3-compatible bucket.
Keys are turned into short-lived presigned GET URLs; absolute URLs pass through.
*/
package storage

import (
	"context"
	"strings"
	"time"
)

// DefaultPhotoURLTTL is how long a presigned photo URL stays valid.
const DefaultPhotoURLTTL = 12 * time.Hour

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Enabled reports whether enough is configured to reach a bucket.
func (c ServiceConfig) Enabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != ""
}

// Presigner creates download URLs for object keys.
type Presigner interface {
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// AvatarResolver turns photo references into URLs.
type AvatarResolver struct {
	presigner Presigner
	ttl       time.Duration
}

// NewAvatarResolver returns a resolver. A nil presigner passes every reference through.
func NewAvatarResolver(presigner Presigner, ttl time.Duration) *AvatarResolver {
	if ttl <= 0 {
		ttl = DefaultPhotoURLTTL
	}
	return &AvatarResolver{presigner: presigner, ttl: ttl}
}

// NewAvatarResolverFromConfig connects to S3 when cfg is enabled, otherwise it
// returns a pass-through resolver.
func NewAvatarResolverFromConfig(ctx context.Context, cfg ServiceConfig) (*AvatarResolver, error) {
	if !cfg.Enabled() {
		return NewAvatarResolver(nil, DefaultPhotoURLTTL), nil
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewAvatarResolver(client, DefaultPhotoURLTTL), nil
}

// ResolvePhoto implements db.PhotoResolver.
func (r *AvatarResolver) ResolvePhoto(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	switch {
	case ref == "":
		return "", nil
	case isAbsoluteURL(ref), r.presigner == nil:
		return ref, nil
	}

	return r.presigner.PresignDownload(ctx, strings.TrimPrefix(ref, "/"), r.ttl)
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}
