package main

import (
	"maps"
	"path/filepath"

	"github.com/spf13/cobra"

	"mwconv/internal/config"
	"mwconv/internal/diag"
	"mwconv/internal/errors"
	"mwconv/internal/render"
	"mwconv/internal/source"
)

// convertSettings is the configuration file overlaid with explicit flags.
type convertSettings struct {
	format        render.Format
	wrapTemplates bool
	maxDepth      int
	templates     map[string]string
	useCache      bool
	configPath    string
}

// loadConfig reads --config when given, otherwise searches upwards from
// the input's directory. A file that fails to load is reported as an
// IOConfigError diagnostic on stderr.
func loadConfig(cmd *cobra.Command, input string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		start := "."
		if input != "" && input != "-" {
			start = input
			if !isDir(input) {
				start = filepath.Dir(input)
			}
		}
		found, ok, ferr := config.Find(start)
		if ferr != nil {
			return nil, ferr
		}
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		reportConfigError(cmd, path, err)
		return nil, errors.WithHintf(errors.Wrapf(errors.ErrInvalidConfig, "%s", path), "fix %s or pass --config", config.FileName)
	}
	return cfg, nil
}

// reportConfigError points a diagnostic at the configuration file.
func reportConfigError(cmd *cobra.Command, path string, err error) {
	fs := source.NewFileSet()
	id, lerr := fs.Load(path)
	if lerr != nil {
		id = fs.AddVirtual(path, nil)
	}
	d := diag.New(diag.SevError, diag.IOConfigError, source.Span{File: id}, err.Error())
	for _, hint := range errors.GetAllHints(err) {
		d = d.WithNote(source.Span{File: id}, hint)
	}
	printDiagnostics(cmd, []diag.Diagnostic{d}, fs)
}

// resolveSettings applies flags the user actually set on top of cfg.
func resolveSettings(cmd *cobra.Command, cfg *config.Config) (convertSettings, error) {
	s := convertSettings{
		format:        cfg.Format(),
		wrapTemplates: cfg.Conversion.WrapTemplates,
		maxDepth:      cfg.Conversion.MaxDepth,
		templates:     cfg.TemplateDefs(),
		useCache:      cfg.Conversion.Cache,
		configPath:    cfg.Path,
	}
	flags := cmd.Flags()

	if flags.Changed("format") {
		value, err := flags.GetString("format")
		if err != nil {
			return s, err
		}
		f, err := render.ParseFormat(value)
		if err != nil {
			return s, errors.WithHint(err, "use --format html|json|msgpack|pretty")
		}
		s.format = f
	}
	if flags.Changed("wrap-templates") {
		v, err := flags.GetBool("wrap-templates")
		if err != nil {
			return s, err
		}
		s.wrapTemplates = v
	}
	if flags.Changed("max-depth") {
		v, err := flags.GetInt("max-depth")
		if err != nil {
			return s, err
		}
		if v <= 0 {
			return s, errors.Newf("--max-depth must be positive, got %d", v)
		}
		s.maxDepth = v
	}
	if flags.Changed("templates") {
		path, err := flags.GetString("templates")
		if err != nil {
			return s, err
		}
		lib, err := config.LoadLibrary(path)
		if err != nil {
			return s, err
		}
		// the flag library sits under inline config defs
		merged := make(map[string]string, len(lib)+len(cfg.Templates.Defs))
		maps.Copy(merged, lib)
		maps.Copy(merged, cfg.Templates.Defs)
		s.templates = merged
	}
	if flags.Changed("cache") {
		v, err := flags.GetBool("cache")
		if err != nil {
			return s, err
		}
		s.useCache = v
	}
	return s, nil
}
