package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mwconv/internal/cache"
	"mwconv/internal/diag"
	"mwconv/internal/driver"
	"mwconv/internal/errors"
	"mwconv/internal/logger"
	"mwconv/internal/render"
	"mwconv/internal/source"
	"mwconv/internal/trace"
	"mwconv/internal/ui"
)

const stdinName = "<stdin>"

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [flags] <file|dir|->",
		Short: "Expand templates and attributes in a document or directory",
		Long: `Convert lexes each document, expands templates and attribute values,
and writes the resulting token stream. Generated attributes carry about/typeof
markers and a meta token per expanded attribute unless --wrap-templates=false.`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}
	cmd.Flags().String("format", "html", "output format (html|json|msgpack|pretty)")
	cmd.Flags().Bool("wrap-templates", true, "mark template output and generated attributes")
	cmd.Flags().Int("max-depth", 0, "maximum template nesting (default from config)")
	cmd.Flags().String("templates", "", "YAML template library")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().Int("jobs", 0, "max parallel documents (0=auto)")
	cmd.Flags().Bool("cache", false, "reuse converted documents from the user cache")
	cmd.Flags().StringP("output", "o", "", "output file, or output directory when converting a directory")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	input := args[0]
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() {
		if err != nil {
			dumpRing(trace.FromContext(cmd.Context()), cmd.ErrOrStderr())
		}
	}()

	cfg, err := loadConfig(cmd, input)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, settings)
	if err != nil {
		return err
	}
	log := logger.Named("cli")
	log.Debugw("convert", "input", input, "config", settings.configPath, "format", settings.format.String(),
		"wrap", settings.wrapTemplates, "depth", settings.maxDepth, "templates", len(settings.templates))

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if input != "-" && isDir(input) {
		return convertDir(cmd, input, output, settings, opts)
	}

	var res *driver.Result
	if input == "-" {
		src, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return errors.Wrap(readErr, "reading stdin")
		}
		res, err = driver.ConvertSource(cmd.Context(), stdinName, src, opts)
	} else {
		res, err = driver.Convert(cmd.Context(), input, opts)
	}
	if res == nil {
		return err
	}
	reportDiagnostics(cmd, res)
	if err != nil {
		return err
	}
	if err := writeDocument(cmd, output, res, settings.format); err != nil {
		return err
	}
	if opts.Timings {
		printTimings(cmd.ErrOrStderr(), res.Path, res.Timing)
	}
	return nil
}

func convertDir(cmd *cobra.Command, dir, output string, settings convertSettings, opts driver.Options) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	var batch *driver.Batch
	if !quiet && shouldUseTUI(mode) {
		files, listErr := driver.ListDocuments(dir)
		if listErr != nil {
			return errors.Wrapf(listErr, "listing %s", dir)
		}
		batch, err = ui.Run(fmt.Sprintf("converting %s", dir), files, cmd.ErrOrStderr(),
			func(sink driver.ProgressSink) (*driver.Batch, error) {
				withSink := opts
				withSink.Progress = sink
				return driver.ConvertDir(cmd.Context(), dir, withSink)
			})
	} else {
		batch, err = driver.ConvertDir(cmd.Context(), dir, opts)
	}
	if batch == nil {
		return err
	}

	if batch.Library != nil && batch.Library.Len() > 0 {
		printDiagnostics(cmd, batch.Library.Items(), batch.Files)
	}
	for i := range batch.Results {
		res := &batch.Results[i]
		reportDiagnostics(cmd, res)
		if res.Err != nil {
			continue
		}
		if output == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", res.Path)
			if werr := writeTokens(cmd.OutOrStdout(), res, settings.format); werr != nil {
				return werr
			}
			if settings.format != render.FormatMsgpack {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			continue
		}
		target, terr := outputPath(dir, output, res.Path, settings.format)
		if terr != nil {
			return terr
		}
		if werr := writeFile(target, res, settings.format); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}
	if opts.Timings {
		printTimings(cmd.ErrOrStderr(), dir, batch.Timing)
	}
	if failed := batch.Failed(); failed > 0 {
		return errors.Newf("%d of %d documents failed", failed, len(batch.Results))
	}
	return nil
}

func driverOptions(cmd *cobra.Command, s convertSettings) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return driver.Options{}, err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		WrapTemplates:  s.wrapTemplates,
		MaxDepth:       s.maxDepth,
		Templates:      s.templates,
		Jobs:           jobs,
		Timings:        timings,
		Logger:         logger.Named("driver"),
		Tracer:         trace.FromContext(cmd.Context()),
	}
	if s.useCache {
		c, cerr := cache.Open("mwconv")
		if cerr != nil {
			// conversion still works without the cache
			logger.Named("cli").Warnw("cache unavailable", "err", cerr)
		} else {
			opts.Cache = c
		}
	}
	return opts, nil
}

// reportDiagnostics prints a document's diagnostics to stderr. Timing
// entries are left to printTimings; --quiet keeps only errors.
func reportDiagnostics(cmd *cobra.Command, res *driver.Result) {
	if res.Bag == nil || res.Bag.Len() == 0 {
		return
	}
	printDiagnostics(cmd, res.Bag.Items(), res.Files)
}

func printDiagnostics(cmd *cobra.Command, items []diag.Diagnostic, fs *source.FileSet) {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	shown := make([]diag.Diagnostic, 0, len(items))
	for _, d := range items {
		if d.Code == diag.ObsTimings {
			continue
		}
		if quiet && d.Severity < diag.SevError {
			continue
		}
		shown = append(shown, d)
	}
	if len(shown) == 0 {
		return
	}
	text := diag.FormatShort(shown, fs, true)
	if !color.NoColor {
		text = colorizeSeverities(text)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), text)
}

// colorizeSeverities paints the leading label of each FormatShort line.
func colorizeSeverities(text string) string {
	labels := []struct {
		prefix string
		paint  func(format string, a ...interface{}) string
	}{
		{"error ", color.RedString},
		{"warning ", color.YellowString},
		{"info ", color.CyanString},
		{"note ", color.BlueString},
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, l := range labels {
			if rest, ok := strings.CutPrefix(line, l.prefix); ok {
				lines[i] = l.paint("%s", strings.TrimSpace(l.prefix)) + " " + rest
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func writeDocument(cmd *cobra.Command, output string, res *driver.Result, format render.Format) error {
	if output == "" || output == "-" {
		return writeTokens(cmd.OutOrStdout(), res, format)
	}
	return writeFile(output, res, format)
}

func writeTokens(w io.Writer, res *driver.Result, format render.Format) error {
	return render.Write(w, res.Tokens, render.Options{
		Format: format,
		Files:  res.Files,
		Color:  format == render.FormatPretty && !color.NoColor,
	})
}

// writeFile renders into memory first so a failed render leaves no partial file.
func writeFile(path string, res *driver.Result, format render.Format) error {
	var buf bytes.Buffer
	if err := render.Write(&buf, res.Tokens, render.Options{Format: format, Files: res.Files}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	// #nosec G306 -- converted documents are not secret
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// outputPath mirrors doc's location under dir into out, swapping the extension.
func outputPath(dir, out, doc string, format render.Format) (string, error) {
	rel, err := filepath.Rel(dir, doc)
	if err != nil {
		return "", errors.Wrapf(err, "relative path of %s", doc)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + outputExt(format)
	return filepath.Join(out, rel), nil
}

func outputExt(format render.Format) string {
	switch format {
	case render.FormatHTML:
		return ".html"
	case render.FormatJSON:
		return ".json"
	case render.FormatMsgpack:
		return ".mp"
	case render.FormatPretty:
		return ".txt"
	default:
		return ".out"
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
