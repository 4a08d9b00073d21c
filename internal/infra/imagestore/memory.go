package imagestore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
)

// MemoryStorage keeps archived images in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]storedImage
}

type storedImage struct {
	data []byte
	meta skinanalysis.StoredObject
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]storedImage)}
}

// Put stores a copy of the image and returns its metadata.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (skinanalysis.StoredObject, error) {
	hash := md5.Sum(data)
	obj := skinanalysis.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}
	s.mu.Lock()
	s.blobs[key] = storedImage{data: bytes.Clone(data), meta: obj}
	s.mu.Unlock()
	return obj, nil
}

// Get returns the stored bytes and metadata for key.
func (s *MemoryStorage) Get(key string) ([]byte, skinanalysis.StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.blobs[key]
	if !ok {
		return nil, skinanalysis.StoredObject{}, false
	}
	return bytes.Clone(img.data), img.meta, true
}

var _ skinanalysis.ImageStorage = (*MemoryStorage)(nil)
