package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/James-Git-Repo/eu-market-pulse/internal/util"
)

// MaxCoverUploadSize caps cover uploads at 5 MB.
const MaxCoverUploadSize = 5 << 20

// maxCoverDimension bounds the stored image; larger uploads are scaled
// down preserving aspect ratio.
const maxCoverDimension = 1600

const coverSubDir = "covers"

// CoverUpload is the result of a processed cover image.
type CoverUpload struct {
	// URL is the web path served by the uploads file server.
	URL string
	// FilePath is the absolute location on disk.
	FilePath string
	Width    int
	Height   int
	Size     int64
}

// MediaService validates and stores uploaded cover images.
type MediaService struct {
	uploadsDir string
}

// NewMediaService creates a MediaService rooted at uploadsDir.
func NewMediaService(uploadsDir string) *MediaService {
	return &MediaService{uploadsDir: uploadsDir}
}

// ProcessCover reads an uploaded image, fixes its EXIF orientation,
// scales it down when oversized, and stores it under a fresh UUID name.
// JPEG, PNG, GIF, and WebP are accepted; everything is re-encoded as
// JPEG except PNG, which keeps its transparency.
func (m *MediaService) ProcessCover(r io.Reader, filename string) (*CoverUpload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxCoverUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxCoverUploadSize {
		return nil, fmt.Errorf("cover image exceeds %d MB limit", MaxCoverUploadSize>>20)
	}

	format := detectImageFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > maxCoverDimension || bounds.Dy() > maxCoverDimension {
		img = imaging.Fit(img, maxCoverDimension, maxCoverDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	outFormat := "jpeg"
	ext := ".jpg"
	if format == "png" {
		outFormat = "png"
		ext = ".png"
	}

	encoded, err := encodeImage(img, outFormat)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	if _, err := util.SanitizeFilename(filename); err != nil {
		return nil, err
	}
	name := uuid.New().String() + ext

	target, err := util.SafeJoinPath(m.uploadsDir, coverSubDir, name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	if err := os.WriteFile(target, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("saving cover: %w", err)
	}

	return &CoverUpload{
		URL:      "/uploads/" + coverSubDir + "/" + name,
		FilePath: target,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(encoded)),
	}, nil
}

// Remove deletes a previously stored cover given its web URL. Unknown
// paths are ignored.
func (m *MediaService) Remove(coverURL string) error {
	rel, ok := strings.CutPrefix(coverURL, "/uploads/")
	if !ok {
		return nil
	}
	target, err := util.SafeJoinPath(m.uploadsDir, rel)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func detectImageFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging).
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// readOrientation returns the EXIF orientation tag, or 1 when absent.
func readOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
