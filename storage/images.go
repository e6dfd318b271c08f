package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxImageBytes = 5 * 1024 * 1024

var (
	ErrImageTooLarge  = errors.New("image size should not exceed 5MB")
	ErrBadImageFormat = errors.New("invalid image format, only JPEG and PNG are supported")

	dataURLPrefix = regexp.MustCompile(`^data:([^;]+);base64,`)
)

// ImageStore 商品图片存储边界，实现可替换（本地盘/对象存储）
type ImageStore interface {
	Upload(base64Image string) (string, error)
}

// FileImageStore 把图片落到本地目录，经由静态路由对外提供
type FileImageStore struct {
	dir     string
	baseURL string
}

func NewFileImageStore(dir, baseURL string) (*FileImageStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "products"), 0o755); err != nil {
		return nil, err
	}
	return &FileImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileImageStore) Upload(base64Image string) (string, error) {
	contentType := "image/jpeg"
	if m := dataURLPrefix.FindStringSubmatch(base64Image); m != nil {
		contentType = m[1]
		base64Image = base64Image[len(m[0]):]
	}
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
	default:
		return "", ErrBadImageFormat
	}

	data, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return "", ErrBadImageFormat
	}
	if len(data) > maxImageBytes {
		return "", ErrImageTooLarge
	}

	name := filepath.Join("products", uuid.NewString()+".jpg")
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.baseURL + "/" + filepath.ToSlash(name), nil
}
