package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wikiscrap/internal/output"
)

// writeSession lays the session out on disk: article folders, optional images,
// the summary document, the jsonl index and the manifest.
func (r *Runner) writeSession(ctx context.Context, s *Session) error {
	w := output.NewWriter(r.log)
	out := r.opts.Out

	dir, err := w.CreateSessionDir(s.OutputRoot, s.Keyword, s.StartedAt)
	if err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	s.Dir = dir

	at := r.deps.Clock()
	entries := make([]output.ManifestArticle, 0, len(s.Pages))
	for _, page := range s.Pages {
		art, err := w.WriteArticle(dir, page, at)
		if err != nil {
			return fmt.Errorf("write article %q: %w", page.Title, err)
		}
		saved := 0
		if r.opts.DownloadImages && len(page.Images) > 0 {
			saved, err = w.DownloadImages(ctx, r.deps.Getter, art.Dir, page.Images)
			if err != nil {
				r.log.Warn("image download stopped", zap.String("dir", art.Dir), zap.Error(err))
			}
			fmt.Fprintf(out, "  %d/%d image(s) saved\n", saved, len(page.Images))
		}
		s.Articles = append(s.Articles, art)
		entries = append(entries, output.ArticleEntry(art, saved))
		fmt.Fprintf(out, "Wrote: %s\n", art.Dir)
	}

	summaryPath, err := w.WriteSummary(dir, output.Summary{
		Keyword:  s.Keyword,
		At:       at,
		Articles: s.Articles,
		Report:   s.Report,
	})
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	s.SummaryPath = summaryPath
	fmt.Fprintf(out, "Wrote: %s\n", summaryPath)

	if _, err := output.WriteIndex(dir, s.Articles); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	s.CompletedAt = r.deps.Clock()
	if _, err := output.WriteManifest(dir, s.manifest(entries)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
