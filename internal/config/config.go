// Package config loads mwconv.toml.
//
//	[conversion]
//	wrap_templates = true
//	max_depth = 40
//	cache = false
//
//	[templates]
//	library = "templates.yaml"
//
//	[templates.defs]
//	Echo = "{{{1}}}"
//
//	[output]
//	format = "html"
//
// The library file is YAML with a single "templates" mapping of name to body.
// Inline defs override library entries of the same name.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mwconv/internal/errors"
	"mwconv/internal/expand"
	"mwconv/internal/render"
)

// FileName is the configuration file looked up by Find.
const FileName = "mwconv.toml"

// Config is a loaded configuration. Path and Root are empty for Default.
type Config struct {
	Path       string     `toml:"-"`
	Root       string     `toml:"-"`
	Conversion Conversion `toml:"conversion"`
	Templates  Templates  `toml:"templates"`
	Output     Output     `toml:"output"`
}

// Conversion controls the pipeline.
type Conversion struct {
	WrapTemplates bool `toml:"wrap_templates"`
	MaxDepth      int  `toml:"max_depth"`
	Cache         bool `toml:"cache"`
}

// Templates holds template definitions.
type Templates struct {
	Library string            `toml:"library"`
	Defs    map[string]string `toml:"defs"`

	loaded map[string]string
}

// Output selects the serialization.
type Output struct {
	Format string `toml:"format"`
}

type libraryFile struct {
	Templates map[string]string `yaml:"templates"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Conversion: Conversion{WrapTemplates: true, MaxDepth: expand.DefaultMaxDepth},
		Output:     Output{Format: render.FormatHTML.String()},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolving start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path. Keys left unset keep their Default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.NewInvalidConfigError("%s: failed to parse TOML: %v", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.NewInvalidConfigError("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("conversion", "max_depth") && cfg.Conversion.MaxDepth <= 0 {
		return nil, errors.NewInvalidConfigError("%s: [conversion].max_depth must be positive", path)
	}
	if meta.IsDefined("output", "format") {
		if _, err := render.ParseFormat(cfg.Output.Format); err != nil {
			return nil, errors.NewInvalidConfigError("%s: [output].format: %v", path, err)
		}
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)

	if meta.IsDefined("templates", "library") {
		lib := strings.TrimSpace(cfg.Templates.Library)
		if lib == "" {
			return nil, errors.NewInvalidConfigError("%s: [templates].library is empty", path)
		}
		if !filepath.IsAbs(lib) {
			lib = filepath.Join(cfg.Root, filepath.FromSlash(lib))
		}
		defs, err := LoadLibrary(lib)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: [templates].library", path)
		}
		cfg.Templates.loaded = defs
	}
	return cfg, nil
}

// LoadLibrary reads a YAML template library.
func LoadLibrary(path string) (map[string]string, error) {
	// #nosec G304 -- path comes from the user's configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var lf libraryFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, errors.NewInvalidConfigError("%s: failed to parse YAML: %v", path, err)
	}
	return lf.Templates, nil
}

// TemplateDefs returns library entries overlaid with inline defs.
func (c *Config) TemplateDefs() map[string]string {
	out := make(map[string]string, len(c.Templates.loaded)+len(c.Templates.Defs))
	maps.Copy(out, c.Templates.loaded)
	maps.Copy(out, c.Templates.Defs)
	return out
}

// Format returns the parsed output format.
func (c *Config) Format() render.Format {
	f, err := render.ParseFormat(c.Output.Format)
	if err != nil {
		return render.FormatHTML
	}
	return f
}
