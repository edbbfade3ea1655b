package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"mwconv/internal/cache"
	"mwconv/internal/trace"
)

// Options configures a conversion.
type Options struct {
	// MaxDiagnostics caps each document's bag; 0 means unlimited.
	MaxDiagnostics int
	// WrapTemplates turns on provenance tracking.
	WrapTemplates bool
	// MaxDepth bounds template nesting; 0 uses the expander default.
	MaxDepth int
	// Templates maps template names to body source.
	Templates map[string]string
	// Jobs limits parallel documents in ConvertDir; 0 uses GOMAXPROCS.
	Jobs int
	// Timings appends a timing diagnostic to each document's bag.
	Timings bool

	Cache    *cache.DiskCache
	Progress ProgressSink
	Logger   *zap.SugaredLogger
	Tracer   trace.Tracer
}

// fingerprint lists every option that changes the produced tokens.
func (o *Options) fingerprint() []string {
	h := sha256.New()
	for _, name := range slices.Sorted(maps.Keys(o.Templates)) {
		body := o.Templates[name]
		_, _ = h.Write([]byte(strconv.Itoa(len(name)) + ":" + name + strconv.Itoa(len(body)) + ":" + body))
	}
	return []string{
		"wrap=" + strconv.FormatBool(o.WrapTemplates),
		"depth=" + strconv.Itoa(o.MaxDepth),
		"templates=" + hex.EncodeToString(h.Sum(nil)),
	}
}
