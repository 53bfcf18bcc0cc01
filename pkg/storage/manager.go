package storage

import (
	"fmt"

	"github.com/sparkcrackers/storefront/config"
)

// Open builds the named disk from configuration. Supported names are
// "local" and "s3".
func Open(name string) (Disk, error) {
	switch name {
	case "local", "":
		return NewLocal(
			config.Get("STORAGE_LOCAL_ROOT", "storage"),
			config.Get("STORAGE_URL", "http://localhost:8080/storage"),
		)
	case "s3":
		return NewS3(S3Options{
			Bucket:   config.Get("S3_BUCKET", ""),
			Region:   config.Get("S3_REGION", "ap-south-1"),
			Key:      config.Get("S3_KEY", ""),
			Secret:   config.Get("S3_SECRET", ""),
			Endpoint: config.Get("S3_ENDPOINT", ""),
			BaseURL:  config.Get("S3_URL", ""),
		})
	default:
		return nil, fmt.Errorf("storage: disk %q is not supported (local, s3)", name)
	}
}
