// Package wizard collects project settings interactively for `gilbench init`.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/gilbench/gilbench/internal/projectconfig"
)

// Answers holds the raw form values. Numeric fields stay strings until the
// form has validated them.
type Answers struct {
	ResultsDir         string
	DockerRoot         string
	Engine             string
	ImageRepo          string
	Iterations         string
	Repeat             string
	Tasks              string
	Workers            string
	BaselineImpl       string
	BaselineVersion    string
	PublishAccountURL  string
	PublishContainerID string
}

// AnswersFrom seeds the form with the values already in cfg.
func AnswersFrom(cfg *projectconfig.ProjectConfig) *Answers {
	return &Answers{
		ResultsDir:         cfg.Paths.Results,
		DockerRoot:         cfg.Paths.DockerRoot,
		Engine:             cfg.Container.Engine,
		ImageRepo:          cfg.Container.ImageRepo,
		Iterations:         strconv.Itoa(cfg.Defaults.Iterations),
		Repeat:             strconv.Itoa(cfg.Defaults.Repeat),
		Tasks:              strconv.Itoa(cfg.Defaults.Tasks),
		Workers:            strconv.Itoa(cfg.Defaults.Workers),
		BaselineImpl:       cfg.Baseline.Implementation,
		BaselineVersion:    cfg.Baseline.VersionPrefix,
		PublishAccountURL:  cfg.Publish.AccountURL,
		PublishContainerID: cfg.Publish.Container,
	}
}

// Apply copies the answers onto a copy of base and validates the result.
func (a *Answers) Apply(base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	cfg := *base
	cfg.Container.Entrypoint = append([]string(nil), base.Container.Entrypoint...)

	cfg.Paths.Results = strings.TrimSpace(a.ResultsDir)
	cfg.Paths.DockerRoot = strings.TrimSpace(a.DockerRoot)
	cfg.Container.Engine = strings.TrimSpace(a.Engine)
	cfg.Container.ImageRepo = strings.TrimSpace(a.ImageRepo)
	cfg.Baseline.Implementation = strings.TrimSpace(a.BaselineImpl)
	cfg.Baseline.VersionPrefix = strings.TrimSpace(a.BaselineVersion)
	cfg.Publish.AccountURL = strings.TrimSpace(a.PublishAccountURL)
	cfg.Publish.Container = strings.TrimSpace(a.PublishContainerID)

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"iterations", a.Iterations, &cfg.Defaults.Iterations},
		{"repeat", a.Repeat, &cfg.Defaults.Repeat},
		{"tasks", a.Tasks, &cfg.Defaults.Tasks},
		{"workers", a.Workers, &cfg.Defaults.Workers},
	}
	for _, f := range ints {
		n, err := parsePositive(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunInitWizard runs an interactive huh form seeded from base and returns
// the resulting configuration.
func RunInitWizard(in io.Reader, out io.Writer, base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	a := AnswersFrom(base)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Results directory").
				Description("Where benchmark JSON files are written").
				Value(&a.ResultsDir).
				Validate(requireText("results directory")),
			huh.NewInput().
				Title("Container root").
				Description("Directory holding one subdirectory per runtime version").
				Value(&a.DockerRoot).
				Validate(requireText("container root")),
			huh.NewSelect[string]().
				Title("Container engine").
				Options(
					huh.NewOption("docker", "docker"),
					huh.NewOption("podman", "podman"),
				).
				Value(&a.Engine),
			huh.NewInput().
				Title("Image repository").
				Value(&a.ImageRepo).
				Validate(requireText("image repository")),
		),
		huh.NewGroup(
			huh.NewInput().Title("Micro iterations").Value(&a.Iterations).Validate(validatePositive),
			huh.NewInput().Title("Micro repeats").Value(&a.Repeat).Validate(validatePositive),
			huh.NewInput().Title("Concurrency tasks").Value(&a.Tasks).Validate(validatePositive),
			huh.NewInput().Title("Concurrency workers").Value(&a.Workers).Validate(validatePositive),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Baseline implementation").
				Description("Micro results are compared against this runtime").
				Value(&a.BaselineImpl).
				Validate(requireText("baseline implementation")),
			huh.NewInput().
				Title("Baseline version prefix").
				Value(&a.BaselineVersion).
				Validate(requireText("baseline version prefix")),
			huh.NewInput().
				Title("Publish account URL").
				Description("Optional Azure Storage account URL").
				Placeholder("https://<account>.blob.core.windows.net/").
				Value(&a.PublishAccountURL),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return a.Apply(base)
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validatePositive(s string) error {
	_, err := parsePositive(s)
	return err
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
