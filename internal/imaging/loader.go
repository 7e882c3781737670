package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads.
//
// Frames are stored as *RGB keyed by their file path. Pipeline stages never
// write to an RGB, so one cached frame can feed any number of concurrent
// pipeline invocations.
//
// # Memory Management
//
// Cached frames remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu     sync.RWMutex
	frames map[string]*RGB
}

// NewImageCache creates and initializes a new empty frame cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		frames: make(map[string]*RGB),
	}
}

// Load retrieves a frame from the cache or decodes it from disk.
//
// Decoding is delegated to disintegration/imaging, which honours EXIF
// orientation so phone captures of the track come out upright. Supported
// formats are those registered with the image package (PNG, JPEG, GIF, BMP,
// TIFF).
func (c *ImageCache) Load(path string) (*RGB, error) {
	c.mu.RLock()
	if frame, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return frame, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	frame, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	c.mu.Lock()
	c.frames[path] = frame
	c.mu.Unlock()

	return frame, nil
}

// Clear removes all frames from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*RGB)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len reports how many frames are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// FrameInfo contains metadata about a loaded frame.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame into the cache and returns its metadata.
func LoadFrameInfo(cache *ImageCache, path string) (*FrameInfo, error) {
	frame, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	}

	return &FrameInfo{
		Width:         frame.Width,
		Height:        frame.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
