package output

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"wikiscrap/internal/fetch"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".svg": true, ".gif": true, ".webp": true,
}

type downloadJob struct {
	AbsoluteURL string
	Filename    string
	LocalPath   string
}

func buildDownloadJob(imageURL, imagesDir string) (downloadJob, error) {
	u, err := fetch.ParseURL(imageURL)
	if err != nil {
		return downloadJob{}, err
	}
	abs := u.String()

	hash := sha256.Sum256([]byte(abs))
	filename := hex.EncodeToString(hash[:])[:16] + imageExt(u.Path)
	return downloadJob{
		AbsoluteURL: abs,
		Filename:    filename,
		LocalPath:   filepath.Join(imagesDir, filename),
	}, nil
}

func imageExt(p string) string {
	if i := strings.Index(p, "?"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	if imageExtensions[ext] {
		return ext
	}
	return ".jpg"
}

// DownloadImages saves each image into <articleDir>/images through getter.
// A failed image is logged and skipped; the count of files on disk is returned.
func (w *Writer) DownloadImages(ctx context.Context, getter fetch.Getter, articleDir string, images []string) (int, error) {
	if len(images) == 0 {
		return 0, nil
	}
	imagesDir := filepath.Join(articleDir, ImagesDir)
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return 0, err
	}

	saved := 0
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		job, err := buildDownloadJob(img, imagesDir)
		if err != nil {
			w.log.Warn("skipping image", zap.String("url", img), zap.Error(err))
			continue
		}
		if err := fetchAsset(ctx, getter, job); err != nil {
			w.log.Warn("image download failed", zap.String("url", job.AbsoluteURL), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func fetchAsset(ctx context.Context, getter fetch.Getter, job downloadJob) error {
	if exists(job.LocalPath) {
		return nil
	}
	resp, err := getter.Get(ctx, job.AbsoluteURL, nil)
	if err != nil {
		return err
	}
	if err := resp.CheckStatus(); err != nil {
		return err
	}
	if len(resp.Body) == 0 {
		return fmt.Errorf("empty body for %s", job.AbsoluteURL)
	}
	return os.WriteFile(job.LocalPath, resp.Body, 0600)
}
