package kss

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Image is a file which is uploaded as part of a multipart form, for example the
// IBAN certificate of a real owner
type Image struct {
	Name string
	Data []byte
}

// ImageSource reads images either from the local disk or, for references of the
// form s3://bucket/key, from S3
type ImageSource struct {
	S3 *S3
}

// Read returns the image the reference points to
func (s ImageSource) Read(ctx context.Context, ref string) (*Image, error) {
	if ref == "" {
		return nil, errors.New("empty image reference")
	}
	if strings.HasPrefix(ref, "s3://") {
		bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 reference '%s'", ref)
		}
		if s.S3 == nil {
			return nil, fmt.Errorf("no S3 access configured for '%s'", ref)
		}
		data, err := s.S3.getObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return &Image{Name: path.Base(key), Data: data}, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, err
	}
	return &Image{Name: filepath.Base(ref), Data: data}, nil
}
