package anonymizer

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dataveil/dataveil/src/datafile"
	"github.com/dataveil/dataveil/src/pbreporter"
)

// Config assembles an Engine. Field lists come in flag order; handlers are
// built kind by kind in the order of AllKinds, which is the order they apply
// in when several target the same location.
type Config struct {
	Mode             Mode
	NameFields       []string
	EmailFields      []string
	IDFields         []string
	IPFields         []string
	CoordinateFields []string
	HostFields       []string

	Generator        Generator
	Rand             *rand.Rand
	KeepCIDRHostBits bool
}

// Stats accumulates what happened to one file. Values counts cells and
// document leaves that actually changed.
type Stats struct {
	Rows     int64
	Values   int64
	Warnings []*Warning
}

// Engine drives the handlers of one run over any number of files. All files
// share the handler caches, so a value repeating across files keeps one
// substitute.
type Engine struct {
	mode     Mode
	handlers []*FieldHandler
	registry *Registry
}

// NewEngine compiles every field spec and builds the handlers over one
// shared registry. Any compile error aborts construction; there is no
// partially-working engine.
func NewEngine(config *Config) (*Engine, error) {
	if config.Generator == nil {
		return nil, fmt.Errorf("no generator configured")
	}
	e := &Engine{
		mode:     config.Mode,
		registry: NewRegistry(),
	}
	kindSpecs := map[Kind][]string{
		NAME_KIND:       config.NameFields,
		EMAIL_KIND:      config.EmailFields,
		ID_KIND:         config.IDFields,
		IP_KIND:         config.IPFields,
		COORDINATE_KIND: config.CoordinateFields,
		HOST_KIND:       config.HostFields,
	}
	for _, kind := range AllKinds {
		for _, raw := range kindSpecs[kind] {
			spec, err := ParseFieldSpec(e.mode, raw)
			if err != nil {
				return nil, err
			}
			e.handlers = append(e.handlers, &FieldHandler{
				kind:     kind,
				spec:     spec,
				cache:    e.registry.Cache(kind),
				strategy: newStrategy(kind, config.Generator, config.Rand, config.KeepCIDRHostBits),
			})
		}
	}
	if len(e.handlers) == 0 {
		return nil, fmt.Errorf("no fields configured, nothing to anonymize")
	}
	log.Infof("engine ready with %d field handler(s) in %s mode",
		len(e.handlers), map[Mode]string{TableMode: "table", DocumentMode: "document"}[e.mode])
	return e, nil
}

func (e *Engine) HandlerCount() int {
	return len(e.handlers)
}

// CacheSizes reports the distinct values substituted so far, per kind.
func (e *Engine) CacheSizes() map[Kind]int {
	return e.registry.CacheSizes()
}

// AnonymizeTable streams reader to writer, applying every handler bound to
// the file's header. Per-value problems become warnings in the stats; I/O
// and format errors are fatal for the file.
func (e *Engine) AnonymizeTable(reader datafile.TableReader, writer datafile.TableWriter, progress pbreporter.ProgressReporter) (*Stats, error) {
	stats := &Stats{}
	header, err := reader.Header()
	if err == io.EOF {
		return stats, nil // empty file, nothing to rewrite
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	bindings, unmatched := BindColumns(header, e.handlers)
	if len(unmatched) > 0 {
		e.recordWarning(stats, &Warning{
			Kind:   UNMATCHED_COLUMNS_WARNING,
			Detail: fmt.Sprintf("configured column(s) not present in header: %s", strings.Join(unmatched, ", ")),
		}, 0)
	}

	if err := writer.WriteHeader(header); err != nil {
		return nil, err
	}
	line := int64(1) // the header row
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row at line %d: %w", line+1, err)
		}
		line++
		e.transformRow(bindings, row, line, stats)
		if err := writer.WriteRow(row); err != nil {
			return nil, err
		}
		stats.Rows++
		if progress != nil {
			progress.SetCurrent(reader.GetBytesRead())
		}
	}
	if progress != nil {
		progress.Complete()
	}
	return stats, nil
}

// AnonymizeDocument runs every handler's path over the document in
// configuration order. Each handler re-evaluates against the document as
// already modified by the ones before it.
func (e *Engine) AnonymizeDocument(doc interface{}) (interface{}, *Stats) {
	stats := &Stats{}
	for _, h := range e.handlers {
		e.applyPath(h, doc, 0, stats)
	}
	return doc, stats
}

// recordWarning attaches the line, logs and accumulates. Nil warnings are
// accepted so call sites stay branch-free.
func (e *Engine) recordWarning(stats *Stats, warning *Warning, line int64) {
	if warning == nil {
		return
	}
	if warning.Line == 0 {
		warning.Line = line
	}
	log.Warnf("%s", warning)
	stats.Warnings = append(stats.Warnings, warning)
}
