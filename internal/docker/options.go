package docker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gilbench/gilbench/internal/hooks"
	"github.com/gilbench/gilbench/internal/models"
)

// Options configures one driver run. Nil overrides leave the in-container
// defaults in place.
type Options struct {
	Suite        models.Suite `validate:"oneof=micro concurrency"`
	Engine       string       `validate:"oneof=docker podman"`
	ImageRepo    string       `validate:"required"`
	DockerRoot   string       `validate:"required"`
	DirPrefix    string       `validate:"required"`
	Context      string       `validate:"required"`
	ResultsDir   string
	ResultsMount string   `validate:"required,startswith=/"`
	Entrypoint   []string `validate:"required,min=1,dive,required"`

	SkipBuild bool
	SkipRun   bool
	DryRun    bool
	Aggregate bool

	// RunCmd replaces the benchmark command executed inside each container.
	RunCmd []string

	Iterations *int `validate:"omitempty,gt=0"`
	Repeat     *int `validate:"omitempty,gt=0"`
	Tasks      *int `validate:"omitempty,gt=0"`
	Workers    *int `validate:"omitempty,gt=0"`

	Baseline models.BaselineRef

	Hooks hooks.HooksConfig
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects conflicting overrides and malformed settings.
func (o Options) Validate() error {
	if o.RunCmd != nil && (o.Iterations != nil || o.Repeat != nil || o.Tasks != nil || o.Workers != nil) {
		return errors.New("--run-cmd cannot be combined with benchmark parameter overrides")
	}
	if o.Suite == models.SuiteMicro && (o.Tasks != nil || o.Workers != nil) {
		return errors.New("--tasks/--workers overrides require --suite concurrency")
	}
	if o.Suite == models.SuiteConcurrency && (o.Iterations != nil || o.Repeat != nil) {
		return errors.New("--iterations/--repeat overrides are unavailable for the concurrency suite")
	}

	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid container options: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid container options: %w", err)
	}
	return nil
}
