package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"wikiscrap/internal/markdown"
)

const (
	DefaultRoot     = "resultats"
	TimestampLayout = "20060102_150405"
	DateLayout      = "2006-01-02 15:04:05"

	DataFile     = "data.json"
	ArticleFile  = "article.md"
	ResumeFile   = "resume.txt"
	SectionsFile = "sections.txt"
	LinksFile    = "liens.txt"
	ImagesFile   = "images.txt"
	ImagesDir    = "images"
	SummaryFile  = "RESUME_RECHERCHE.md"
	ManifestFile = "session.json"
	IndexFile    = "index.jsonl"
)

// Writer lays out one session on disk.
type Writer struct {
	conv *markdown.Converter
	log  *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{conv: markdown.NewConverter(), log: logger}
}

// SessionDirName is <keyword>_<timestamp> for searches and batch_<timestamp> otherwise.
func SessionDirName(keyword string, at time.Time) string {
	stamp := at.Format(TimestampLayout)
	if strings.TrimSpace(keyword) == "" {
		return "batch_" + stamp
	}
	return SanitizeFilename(keyword) + "_" + stamp
}

// CreateSessionDir creates the session folder under root, suffixing on collision.
func (w *Writer) CreateSessionDir(root, keyword string, at time.Time) (string, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	dir := uniqueDir(root, SessionDirName(keyword, at))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	w.log.Debug("session directory created", zap.String("dir", dir))
	return dir, nil
}

func WriteJSON(dir, filename string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return "", err
	}
	return path, nil
}

func WriteText(dir, filename, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", err
	}
	return path, nil
}

// WriteLines writes one entry per line; an empty list gives an empty file.
func WriteLines(dir, filename string, lines []string) (string, error) {
	text := strings.Join(lines, "\n")
	if text != "" {
		text += "\n"
	}
	return WriteText(dir, filename, text)
}
