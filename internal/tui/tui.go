package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"wikiscrap/internal/config"
	"wikiscrap/internal/search"
)

const (
	sourceKeyword = "keyword"
	sourceURLs    = "urls"
	sourceFile    = "file"
)

type Result struct {
	Config     config.Config
	SaveConfig bool
	ConfigPath string
	RunNow     bool
}

func Run() (Result, error) {
	printBanner()
	state := newFormState()

	if err := manageConfigs(state); err != nil {
		return Result{}, err
	}

	form := buildForm(state).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return Result{}, err
	}

	return buildResult(state)
}

func printBanner() {
	fmt.Print(`
          _ _    _
 __      _(_) | _(_)___  ___ _ __ __ _ _ __
 \ \ /\ / / | |/ / / __|/ __| '__/ _` + "`" + ` | '_ \
  \ V  V /| |   <| \__ \ (__| | | (_| | |_) |
   \_/\_/ |_|_|\_\_|___/\___|_|  \__,_| .__/
                                      |_|
`)
}

func manageConfigs(state *formState) error {
	for {
		files, err := config.ListFiles()
		if err != nil {
			return fmt.Errorf("failed to list configs: %w", err)
		}

		if len(files) == 0 {
			return nil
		}

		var selectedFile string
		opts := []huh.Option[string]{
			huh.NewOption("Start fresh (defaults)", ""),
		}
		for _, f := range files {
			opts = append(opts, huh.NewOption(fmt.Sprintf("Manage %s", f), f))
		}

		selectForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configurations").
					Description("Select a config to load or manage, or start fresh.").
					Options(opts...).
					Value(&selectedFile),
			),
		).WithTheme(huh.ThemeDracula())

		if err := selectForm.Run(); err != nil {
			return err
		}

		if selectedFile == "" {
			return nil
		}

		var action string
		actionForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("Action for %s", selectedFile)).
					Options(
						huh.NewOption("Load this config", "load"),
						huh.NewOption("Clone this config", "clone"),
						huh.NewOption("Delete this config", "delete"),
						huh.NewOption("Back to list", "back"),
					).
					Value(&action),
			),
		).WithTheme(huh.ThemeDracula())

		if err := actionForm.Run(); err != nil {
			return err
		}

		shouldExit, err := executeConfigAction(action, selectedFile, state)
		if err != nil {
			return err
		}
		if shouldExit {
			return nil
		}
	}
}

func executeConfigAction(action, selectedFile string, state *formState) (bool, error) {
	switch action {
	case "load":
		cfg, err := config.Load(selectedFile)
		if err != nil {
			return false, fmt.Errorf("failed to load %s: %w", selectedFile, err)
		}
		state.fromConfig(cfg)
		state.configPath = selectedFile
		return true, nil

	case "clone":
		var newName string
		if err := huh.NewInput().Title("Clone as").Value(&newName).Validate(validateNewFilename).Run(); err != nil {
			return false, err
		}
		cfg, err := config.Load(selectedFile)
		if err != nil {
			return false, fmt.Errorf("failed to load %s: %w", selectedFile, err)
		}
		if err := config.Write(ensureJSONExtension(newName), cfg); err != nil {
			return false, err
		}

	case "delete":
		var confirmDelete bool
		if err := huh.NewConfirm().Title(fmt.Sprintf("Really delete %s?", selectedFile)).Affirmative("Yes, delete it.").Negative("No, keep it.").Value(&confirmDelete).Run(); err != nil {
			return false, err
		}
		if confirmDelete {
			if err := os.Remove(selectedFile); err != nil {
				return false, fmt.Errorf("failed to delete %s: %w", selectedFile, err)
			}
		}
	}

	return false, nil
}

type formState struct {
	source         string
	keyword        string
	urls           string
	urlFile        string
	limitStr       string
	outputDir      string
	timeoutSecStr  string
	pauseSecStr    string
	retriesStr     string
	userAgent      string
	searchEndpoint string
	downloadImages bool
	verbose        bool
	configPath     string
	finalAction    string
}

func newFormState() *formState {
	s := &formState{
		source:      sourceKeyword,
		configPath:  config.DefaultConfigPath(),
		finalAction: "run",
	}
	s.fromConfig(config.Default())
	return s
}

func (s *formState) fromConfig(cfg config.Config) {
	switch {
	case len(cfg.URLs) > 0:
		s.source = sourceURLs
	case cfg.URLFile != "":
		s.source = sourceFile
	case cfg.Keyword != "":
		s.source = sourceKeyword
	}
	s.keyword = cfg.Keyword
	s.urls = strings.Join(cfg.URLs, ", ")
	s.urlFile = cfg.URLFile
	s.limitStr = strconv.Itoa(cfg.Limit)
	s.outputDir = cfg.OutputDir
	s.timeoutSecStr = formatFloat(cfg.TimeoutSeconds)
	s.pauseSecStr = formatFloat(cfg.PauseSeconds)
	s.retriesStr = strconv.Itoa(cfg.Retries)
	s.userAgent = cfg.UserAgent
	s.searchEndpoint = cfg.SearchEndpoint
	s.downloadImages = cfg.DownloadImages
	s.verbose = cfg.Verbose
}

func buildForm(state *formState) *huh.Form {
	return huh.NewForm(
		buildSourceGroup(state),
		buildKeywordGroup(state),
		buildURLsGroup(state),
		buildFileGroup(state),
		buildOutputGroup(state),
		buildNetworkGroup(state),
		buildFinishGroup(state),
	)
}

func buildSourceGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().Title("Targets").Description("Where the articles come from.").Value(&state.source).Options(
			huh.NewOption("Keyword search", sourceKeyword),
			huh.NewOption("List of URLs", sourceURLs),
			huh.NewOption("File of URLs", sourceFile),
		),
	).Title("Source")
}

func buildKeywordGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Keyword").Placeholder("Tour Eiffel").Value(&state.keyword).
			Validate(required("keyword is required")),
		huh.NewInput().Title("Results").Description("Articles to scrape from the search (1-20).").Value(&state.limitStr).
			Validate(validateIntString(search.MinLimit, search.MaxLimit)),
		huh.NewInput().Title("Search endpoint").Value(&state.searchEndpoint),
	).Title("Keyword search").WithHideFunc(func() bool { return state.source != sourceKeyword })
}

func buildURLsGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewText().Title("URLs").Description("Comma or newline separated article URLs.").Value(&state.urls).
			Validate(required("at least one url is required")),
	).Title("URLs").WithHideFunc(func() bool { return state.source != sourceURLs })
}

func buildFileGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("URL file").Description("One URL per line, # for comments.").Placeholder("urls.txt").Value(&state.urlFile).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("file is required")
				}
				if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
					return errors.New("file not found")
				}
				return nil
			}),
	).Title("URL file").WithHideFunc(func() bool { return state.source != sourceFile })
}

func buildOutputGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Output dir").Value(&state.outputDir).Validate(required("output dir is required")),
		huh.NewConfirm().Title("Download images").Description("Save article images under <article>/images.").Value(&state.downloadImages),
	).Title("Output")
}

func buildNetworkGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Timeout (seconds)").Value(&state.timeoutSecStr).
			Validate(validateFloatString(0.1, 3600)),
		huh.NewInput().Title("Pause between articles (seconds)").Value(&state.pauseSecStr).
			Validate(validateFloatString(0, 600)),
		huh.NewInput().Title("Retries on connection failure").Value(&state.retriesStr).
			Validate(validateIntString(0, 10)),
		huh.NewInput().Title("User-Agent").Value(&state.userAgent),
		huh.NewConfirm().Title("Verbose logging").Value(&state.verbose),
	).Title("Network")
}

func buildFinishGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[string]().Title("Action").Value(&state.finalAction).Options(
			huh.NewOption("Run scraper now", "run"),
			huh.NewOption("Save config and run", "save_and_run"),
			huh.NewOption("Only save config", "save_only"),
		),
		huh.NewInput().Title("Config path").
			Description("Path for 'Save' actions.").
			Value(&state.configPath).
			Validate(func(s string) error {
				if !state.saves() {
					return nil
				}
				if strings.TrimSpace(s) == "" {
					return errors.New("filename cannot be empty")
				}
				return nil
			}),
	).Title("Finish")
}

func (s *formState) saves() bool {
	return s.finalAction == "save_and_run" || s.finalAction == "save_only"
}

// buildResult converts the form into a validated config. Only the fields of the
// selected source are kept.
func buildResult(state *formState) (Result, error) {
	limit, err := parseInt(state.limitStr)
	if err != nil {
		return Result{}, errors.New("results must be an integer")
	}
	timeoutSec, err := parseNonNegativeFloat(state.timeoutSecStr, "timeout must be a number >= 0")
	if err != nil {
		return Result{}, err
	}
	pauseSec, err := parseNonNegativeFloat(state.pauseSecStr, "pause must be a number >= 0")
	if err != nil {
		return Result{}, err
	}
	retries, err := parseNonNegativeInt(state.retriesStr, "retries must be an integer >= 0")
	if err != nil {
		return Result{}, err
	}

	cfg := config.Default()
	cfg.Limit = limit
	cfg.OutputDir = strings.TrimSpace(state.outputDir)
	cfg.TimeoutSeconds = timeoutSec
	cfg.PauseSeconds = pauseSec
	cfg.Retries = retries
	cfg.DownloadImages = state.downloadImages
	cfg.Verbose = state.verbose
	if ua := strings.TrimSpace(state.userAgent); ua != "" {
		cfg.UserAgent = ua
	}
	if ep := strings.TrimSpace(state.searchEndpoint); ep != "" {
		cfg.SearchEndpoint = ep
	}
	switch state.source {
	case sourceURLs:
		cfg.URLs = splitURLs(state.urls)
	case sourceFile:
		cfg.URLFile = strings.TrimSpace(state.urlFile)
	default:
		cfg.Keyword = strings.TrimSpace(state.keyword)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Config: cfg, ConfigPath: strings.TrimSpace(state.configPath)}
	switch state.finalAction {
	case "run":
		res.RunNow = true
	case "save_and_run":
		res.RunNow = true
		res.SaveConfig = true
	case "save_only":
		res.SaveConfig = true
	}

	if res.SaveConfig {
		if err := config.Write(res.ConfigPath, cfg); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func splitURLs(s string) []string {
	out := []string{}
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }) {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNonNegativeInt(s, errMsg string) (int, error) {
	val, err := parseInt(s)
	if err != nil || val < 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseNonNegativeFloat(s, errMsg string) (float64, error) {
	val, err := parseFloat(s)
	if err != nil || val < 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func validateIntString(minVal, maxVal int) func(string) error {
	return func(s string) error {
		v, err := parseInt(s)
		if err != nil {
			return errors.New("must be an integer")
		}
		if v < minVal || v > maxVal {
			return fmt.Errorf("must be between %d and %d", minVal, maxVal)
		}
		return nil
	}
}

func validateFloatString(minVal, maxVal float64) func(string) error {
	return func(s string) error {
		v, err := parseFloat(s)
		if err != nil {
			return errors.New("must be a number")
		}
		if v < minVal || v > maxVal {
			return fmt.Errorf("must be between %g and %g", minVal, maxVal)
		}
		return nil
	}
}

func validateNewFilename(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.ContainsAny(s, `\:*?"<>|`) {
		return errors.New("invalid characters")
	}
	if _, err := os.Stat(ensureJSONExtension(s)); err == nil {
		return errors.New("file already exists")
	}
	return nil
}

func ensureJSONExtension(s string) string {
	if !strings.HasSuffix(s, ".json") {
		return s + ".json"
	}
	return s
}
