package experiment

import (
	"fmt"
	"os"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/integrators"
)

// Resolve turns a preset name or a config file path into a config.
func Resolve(source string) (*config.Config, error) {
	if cfg := config.GetPreset(source); cfg != nil {
		return cfg, nil
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("unknown preset or config file %q (presets: %v)", source, config.ListPresets())
	}
	return config.Load(source)
}

// Variants clones cfg once per integrator name, for side-by-side runs.
func Variants(cfg *config.Config, names ...string) ([]*config.Config, error) {
	if len(names) == 0 {
		names = integrators.Names()
	}
	out := make([]*config.Config, 0, len(names))
	for _, name := range names {
		if _, err := integrators.ByName(name); err != nil {
			return nil, err
		}
		c := *cfg
		c.Bodies = append([]config.BodyConfig(nil), cfg.Bodies...)
		c.Integrator = name
		c.Name = cfg.Name + "/" + name
		out = append(out, &c)
	}
	return out, nil
}
