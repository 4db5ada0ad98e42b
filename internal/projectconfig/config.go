// Package projectconfig provides the ProjectConfig struct and loader for
// .gilbench.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gilbench/gilbench/internal/hooks"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/utils"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".gilbench.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultResultsDir = "results"
	DefaultDockerRoot = "docker"
	DefaultContext    = "."

	DefaultEngine       = "docker"
	DefaultImageRepo    = "gilbench"
	DefaultDirPrefix    = "py"
	DefaultResultsMount = "/app/results"
	DefaultEntrypoint   = "gilbench"

	DefaultIterations = 10
	DefaultRepeat     = 5
	DefaultTasks      = 24
	DefaultWorkers    = 4

	DefaultBaselineImplementation = "CPython"
	DefaultBaselineVersionPrefix  = "3.14"

	DefaultPublishContainer = "gilbench-results"
)

// PathsConfig holds host-side directories.
type PathsConfig struct {
	Results    string `yaml:"results,omitempty" validate:"required"`
	DockerRoot string `yaml:"docker_root,omitempty" validate:"required"`
	Context    string `yaml:"context,omitempty" validate:"required"`
}

// ContainerConfig holds the container engine settings used by the driver.
type ContainerConfig struct {
	Engine       string   `yaml:"engine,omitempty" validate:"oneof=docker podman"`
	ImageRepo    string   `yaml:"image_repo,omitempty" validate:"required"`
	DirPrefix    string   `yaml:"dir_prefix,omitempty" validate:"required"`
	ResultsMount string   `yaml:"results_mount,omitempty" validate:"required,startswith=/"`
	Entrypoint   []string `yaml:"entrypoint,omitempty" validate:"required,min=1,dive,required"`
}

// DefaultsConfig holds default benchmark parameters.
type DefaultsConfig struct {
	Iterations int `yaml:"iterations,omitempty" validate:"gt=0"`
	Repeat     int `yaml:"repeat,omitempty" validate:"gt=0"`
	Tasks      int `yaml:"tasks,omitempty" validate:"gt=0"`
	Workers    int `yaml:"workers,omitempty" validate:"gt=0"`
}

// BaselineConfig names the runtime that micro ratios are computed against.
type BaselineConfig struct {
	Implementation string `yaml:"implementation,omitempty" validate:"required"`
	VersionPrefix  string `yaml:"version_prefix,omitempty" validate:"required"`
}

// PublishConfig holds the blob storage destination for published results.
type PublishConfig struct {
	AccountURL string `yaml:"account_url,omitempty" validate:"omitempty,url"`
	Container  string `yaml:"container,omitempty" validate:"required"`
}

// ProjectConfig is the top-level configuration loaded from .gilbench.yaml.
type ProjectConfig struct {
	Paths     PathsConfig       `yaml:"paths,omitempty"`
	Container ContainerConfig   `yaml:"container,omitempty"`
	Defaults  DefaultsConfig    `yaml:"defaults,omitempty"`
	Baseline  BaselineConfig    `yaml:"baseline,omitempty"`
	Publish   PublishConfig     `yaml:"publish,omitempty"`
	Hooks     hooks.HooksConfig `yaml:"hooks,omitempty"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results:    DefaultResultsDir,
			DockerRoot: DefaultDockerRoot,
			Context:    DefaultContext,
		},
		Container: ContainerConfig{
			Engine:       DefaultEngine,
			ImageRepo:    DefaultImageRepo,
			DirPrefix:    DefaultDirPrefix,
			ResultsMount: DefaultResultsMount,
			Entrypoint:   []string{DefaultEntrypoint},
		},
		Defaults: DefaultsConfig{
			Iterations: DefaultIterations,
			Repeat:     DefaultRepeat,
			Tasks:      DefaultTasks,
			Workers:    DefaultWorkers,
		},
		Baseline: BaselineConfig{
			Implementation: DefaultBaselineImplementation,
			VersionPrefix:  DefaultBaselineVersionPrefix,
		},
		Publish: PublishConfig{
			Container: DefaultPublishContainer,
		},
	}
}

// BaselineRef converts the baseline section for the aggregator.
func (c *ProjectConfig) BaselineRef() models.BaselineRef {
	return models.BaselineRef{
		Implementation: c.Baseline.Implementation,
		VersionPrefix:  c.Baseline.VersionPrefix,
	}
}

// ResultsDirFor returns the host results directory for a suite.
func (c *ProjectConfig) ResultsDirFor(suite models.Suite) string {
	return filepath.Join(c.Paths.Results, string(suite))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the merged configuration.
func (c *ProjectConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s: %w", FileName, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid %s: %s", FileName, strings.Join(msgs, "; "))
}

// Load finds .gilbench.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. Relative paths
// in the file are resolved against the file's directory.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(path, data)
}

// LoadFile reads the configuration at path. The file must exist.
func LoadFile(path string) (*ProjectConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(abs, data)
}

func parse(path string, data []byte) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	cfg.Path = path

	base := filepath.Dir(path)
	utils.ResolvePaths(base, &cfg.Paths.Results, &cfg.Paths.DockerRoot, &cfg.Paths.Context)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .gilbench.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.DockerRoot != "" {
		dst.Paths.DockerRoot = src.Paths.DockerRoot
	}
	if src.Paths.Context != "" {
		dst.Paths.Context = src.Paths.Context
	}

	// Container
	if src.Container.Engine != "" {
		dst.Container.Engine = src.Container.Engine
	}
	if src.Container.ImageRepo != "" {
		dst.Container.ImageRepo = src.Container.ImageRepo
	}
	if src.Container.DirPrefix != "" {
		dst.Container.DirPrefix = src.Container.DirPrefix
	}
	if src.Container.ResultsMount != "" {
		dst.Container.ResultsMount = src.Container.ResultsMount
	}
	if len(src.Container.Entrypoint) > 0 {
		dst.Container.Entrypoint = src.Container.Entrypoint
	}

	// Defaults
	if src.Defaults.Iterations != 0 {
		dst.Defaults.Iterations = src.Defaults.Iterations
	}
	if src.Defaults.Repeat != 0 {
		dst.Defaults.Repeat = src.Defaults.Repeat
	}
	if src.Defaults.Tasks != 0 {
		dst.Defaults.Tasks = src.Defaults.Tasks
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}

	// Baseline
	if src.Baseline.Implementation != "" {
		dst.Baseline.Implementation = src.Baseline.Implementation
	}
	if src.Baseline.VersionPrefix != "" {
		dst.Baseline.VersionPrefix = src.Baseline.VersionPrefix
	}

	// Publish
	if src.Publish.AccountURL != "" {
		dst.Publish.AccountURL = src.Publish.AccountURL
	}
	if src.Publish.Container != "" {
		dst.Publish.Container = src.Publish.Container
	}

	// Hooks
	if !src.Hooks.Empty() {
		dst.Hooks = src.Hooks
	}
}

// Marshal renders cfg as YAML for writing a new .gilbench.yaml.
func Marshal(cfg *ProjectConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", FileName, err)
	}
	return data, nil
}
