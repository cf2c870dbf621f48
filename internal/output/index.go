package output

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IndexRecord is one line of index.jsonl, one per written article.
type IndexRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Folder        string   `json:"folder"`
	Summary       string   `json:"summary"`
	Sections      []string `json:"sections"`
	TokenEstimate int      `json:"token_estimate"`
}

// StableID is derived from the article URL so reruns produce the same ids.
func StableID(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(rawURL)))
	return hex.EncodeToString(sum[:])[:16]
}

func WriteIndex(sessionDir string, articles []Article) (string, error) {
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(sessionDir, IndexFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := EncodeIndex(f, articles); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// EncodeIndex writes one JSON line per article to w.
func EncodeIndex(w io.Writer, articles []Article) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, a := range articles {
		rec := IndexRecord{
			ID:            StableID(a.Page.URL),
			Title:         a.Page.Title,
			URL:           a.Page.URL,
			Folder:        a.Folder,
			Summary:       a.Page.Summary,
			Sections:      a.Page.Sections,
			TokenEstimate: len([]rune(a.Page.Summary)) / 4,
		}
		if rec.Sections == nil {
			rec.Sections = []string{}
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
