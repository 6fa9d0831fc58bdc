package service

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/weltenbibliothek/community-service/internal/blob"
	"github.com/weltenbibliothek/community-service/internal/domain"
)

var (
	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	}
	allowedVideoTypes = map[string]bool{
		"video/mp4":  true,
		"video/webm": true,
	}
)

type MediaLimits struct {
	MaxImageSize int64
	MaxVideoSize int64
}

type MediaService struct {
	store  blob.Store
	limits MediaLimits
}

func NewMediaService(store blob.Store, limits MediaLimits) *MediaService {
	if limits.MaxImageSize <= 0 {
		limits.MaxImageSize = 5 << 20
	}
	if limits.MaxVideoSize <= 0 {
		limits.MaxVideoSize = 50 << 20
	}
	return &MediaService{store: store, limits: limits}
}

type MediaUpload struct {
	Kind        string // image|video
	World       string
	Username    string
	Filename    string
	ContentType string
	Data        []byte
}

// Upload — валидирует и кладёт объект под ключом {world}/{username}/{ts}-{rand}.{ext}.
func (s *MediaService) Upload(ctx context.Context, up MediaUpload) (*blob.ObjectInfo, error) {
	if up.Username == "" || len(up.Data) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidWorld(up.World) {
		return nil, domain.ErrUnknownWorld
	}

	var maxSize int64
	var allowed map[string]bool
	switch up.Kind {
	case "image":
		maxSize, allowed = s.limits.MaxImageSize, allowedImageTypes
	case "video":
		maxSize, allowed = s.limits.MaxVideoSize, allowedVideoTypes
	default:
		return nil, fmt.Errorf("%w: kind must be image or video", domain.ErrInvalidInput)
	}

	if int64(len(up.Data)) > maxSize {
		return nil, fmt.Errorf("%w: file too large (max %d MB)", domain.ErrInvalidInput, maxSize>>20)
	}
	if !allowed[up.ContentType] {
		return nil, fmt.Errorf("%w: content type %q not allowed", domain.ErrInvalidInput, up.ContentType)
	}

	name := objectName(up.World, up.Username, up.Filename)
	info, err := s.store.Put(ctx, name, up.Data, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("media put: %w", err)
	}
	return info, nil
}

func (s *MediaService) Get(ctx context.Context, name string) ([]byte, *blob.ObjectInfo, error) {
	return s.store.Get(ctx, name)
}

func (s *MediaService) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

func objectName(world, username, original string) string {
	ext := strings.TrimPrefix(path.Ext(original), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%d-%s.%s", world, username, time.Now().UnixMilli(), randSuffix(6), ext)
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
