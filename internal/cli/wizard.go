package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wikiscrap/internal/config"
)

// RunConfigWizard asks for each setting on in, starting from base, and writes the
// result to path (or to the path typed at the first prompt).
func RunConfigWizard(in io.Reader, out io.Writer, path string, base config.Config) (string, error) {
	reader := bufio.NewReader(in)
	fmt.Fprintln(out, "Config wizard (press Enter to accept defaults)")

	path = promptString(reader, out, "Config file path", path)
	cfg := base
	cfg.Keyword = promptString(reader, out, "Keyword (optional)", base.Keyword)
	urls := promptString(reader, out, "URLs, comma separated (optional)", strings.Join(base.URLs, ","))
	cfg.URLs = splitCSV(urls)
	cfg.URLFile = promptString(reader, out, "URL file (optional)", base.URLFile)
	cfg.Limit = promptInt(reader, out, "Search results (1-20)", base.Limit)
	cfg.OutputDir = promptString(reader, out, "Output dir", base.OutputDir)
	cfg.TimeoutSeconds = promptFloat(reader, out, "Timeout seconds", base.TimeoutSeconds)
	cfg.PauseSeconds = promptFloat(reader, out, "Pause between articles (seconds)", base.PauseSeconds)
	cfg.Retries = promptInt(reader, out, "Retries on connection failure", base.Retries)
	cfg.DownloadImages = promptBool(reader, out, "Download images (true/false)", base.DownloadImages)

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.Write(path, cfg); err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return path, nil
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func promptString(reader *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, def int) int {
	line := promptString(reader, out, label, strconv.Itoa(def))
	val, err := strconv.Atoi(line)
	if err != nil {
		return def
	}
	return val
}

func promptFloat(reader *bufio.Reader, out io.Writer, label string, def float64) float64 {
	line := promptString(reader, out, label, strconv.FormatFloat(def, 'f', -1, 64))
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return def
	}
	return val
}

func promptBool(reader *bufio.Reader, out io.Writer, label string, def bool) bool {
	line := strings.ToLower(promptString(reader, out, label, strconv.FormatBool(def)))
	switch line {
	case "true", "1", "yes", "y", "oui", "o":
		return true
	case "false", "0", "no", "n", "non":
		return false
	}
	return def
}
