package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"wikiscrap/internal/report"
)

// Manifest is the machine-readable record of one session, written as session.json.
type Manifest struct {
	ID          string            `json:"id"`
	Keyword     string            `json:"keyword,omitempty"`
	Mode        string            `json:"mode"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	State       string            `json:"state"`
	Targets     []ManifestTarget  `json:"targets"`
	Articles    []ManifestArticle `json:"articles"`
	Failures    []ManifestFailure `json:"failures"`
	Report      report.Report     `json:"report"`
}

type ManifestTarget struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

type ManifestArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Folder      string `json:"folder"`
	Sections    int    `json:"sections"`
	Links       int    `json:"links"`
	Images      int    `json:"images"`
	ImagesSaved int    `json:"images_saved,omitempty"`
}

type ManifestFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ArticleEntry summarizes a written article for the manifest.
func ArticleEntry(a Article, imagesSaved int) ManifestArticle {
	return ManifestArticle{
		Title:       a.Page.Title,
		URL:         a.Page.URL,
		Folder:      a.Folder,
		Sections:    len(a.Page.Sections),
		Links:       len(a.Page.Links),
		Images:      len(a.Page.Images),
		ImagesSaved: imagesSaved,
	}
}

func WriteManifest(sessionDir string, m Manifest) (string, error) {
	if m.Targets == nil {
		m.Targets = []ManifestTarget{}
	}
	if m.Articles == nil {
		m.Articles = []ManifestArticle{}
	}
	if m.Failures == nil {
		m.Failures = []ManifestFailure{}
	}
	return WriteJSON(sessionDir, ManifestFile, m)
}

func ReadManifest(sessionDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(sessionDir, ManifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
