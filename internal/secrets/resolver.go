package secrets

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/clawops/clawup/internal/models"
	"github.com/clawops/clawup/internal/secretmgr"
)

// probeTimeout bounds validation probes; anything slower counts as failed.
const probeTimeout = 10 * time.Second

// PromptFunc asks the operator for a value with concealed input. An empty
// return means the operator declined.
type PromptFunc func(spec Spec) (string, error)

// Resolver obtains values for Specs. Any of Manager and Prompt may be nil
// (no secret manager configured / non-interactive run); the chain simply
// skips that source.
type Resolver struct {
	// Preload takes precedence over the process environment; populated from
	// repeated --set KEY=VALUE flags.
	Preload map[string]string

	// Environ reads the process environment; defaults to os.Getenv.
	Environ func(string) string

	Manager secretmgr.Client
	Prompt  PromptFunc
}

func (r *Resolver) environ(key string) string {
	if r.Environ != nil {
		return r.Environ(key)
	}
	return os.Getenv(key)
}

// Resolve works through the priority chain for one spec. The returned error
// is non-nil only for a required credential that stayed empty; probe failures
// and manager outages surface as Resolution.Warning.
func (r *Resolver) Resolve(ctx context.Context, spec Spec) (Resolution, error) {
	res := Resolution{Spec: spec, Source: SourceNone}

	if v := r.Preload[spec.Key]; v != "" {
		res.Value, res.Source = v, SourcePreload
	} else if v := r.environ(spec.Key); v != "" {
		res.Value, res.Source = v, SourcePreload
	}

	if res.Value == "" && r.Manager != nil {
		if !r.Manager.Available(ctx) {
			res.Warning = &models.ManagerUnavailableError{
				Backend: r.Manager.Name(),
				Cause:   errors.New("availability check failed"),
			}
		} else {
			v, err := r.Manager.ReadItem(ctx, spec.managerItem(), spec.managerField())
			switch {
			case err == nil && v != "":
				res.Value, res.Source = v, SourceManager
			case errors.Is(err, secretmgr.ErrItemNotFound):
				// fall through to the prompt, silently
			case err != nil:
				res.Warning = &models.ManagerUnavailableError{Backend: r.Manager.Name(), Cause: err}
			}
		}
	}

	if res.Value == "" && r.Prompt != nil {
		v, err := r.Prompt(spec)
		if err != nil {
			return res, err
		}
		if v != "" {
			res.Value, res.Source = v, SourcePrompt
		}
	}

	if res.Value == "" {
		if spec.Required {
			return res, &models.MissingSecretError{Key: spec.Key, Description: spec.Description}
		}
		return res, nil
	}

	if spec.Probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := spec.Probe(probeCtx, res.Value)
		cancel()
		if err != nil {
			// The remote system owns credential correctness; a failed probe
			// degrades to a warning and never blocks resolution.
			res.Warning = &models.ValidationWarning{Key: spec.Key, Cause: err}
		}
	}

	return res, nil
}

// ResolveAll resolves specs in declared order and stops at the first missing
// required credential. Resolutions gathered before the failure are returned
// alongside the error so the caller can report what did work.
func (r *Resolver) ResolveAll(ctx context.Context, specs []Spec) ([]Resolution, error) {
	out := make([]Resolution, 0, len(specs))
	for _, spec := range specs {
		res, err := r.Resolve(ctx, spec)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}
