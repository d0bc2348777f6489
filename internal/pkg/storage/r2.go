package storage

import "fmt"

// NewR2Storage creates a Cloudflare R2 storage. R2 speaks the S3 API on a
// per-account endpoint and ignores the region.
func NewR2Storage(cfg Config) (*S3Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s, err := newS3Compatible(endpoint, "auto", cfg)
	if err != nil {
		return nil, err
	}
	if s.publicURL == "" {
		s.publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.S3Bucket)
	}
	return s, nil
}
