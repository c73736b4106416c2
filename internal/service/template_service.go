package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/logger"
	"github.com/locvowork/dropdown_export/pkg/dataflow"
	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/locvowork/dropdown_export/pkg/simpleexcel"
)

var (
	// ErrTemplateNotFound is returned for an unknown template name.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidTemplate is returned when a template cannot be parsed.
	ErrInvalidTemplate = errors.New("invalid template")
)

var templateName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var templateExtensions = []string{".yaml", ".yml"}

const lookupRetries = 2

// TemplateService renders YAML templates into workbooks with dropdowns,
// resolving dictionary-backed columns through a DictionaryRepository.
type TemplateService struct {
	dict         domain.DictionaryRepository
	templateDir  string
	workers      int
	dropdownOpts []dropdown.Option
}

// NewTemplateService creates a TemplateService reading templates from templateDir.
func NewTemplateService(dict domain.DictionaryRepository, templateDir string, workers int, opts ...dropdown.Option) *TemplateService {
	if workers < 1 {
		workers = 1
	}
	return &TemplateService{
		dict:         dict,
		templateDir:  templateDir,
		workers:      workers,
		dropdownOpts: opts,
	}
}

// ListTemplates returns every parseable template in the template directory,
// sorted by name.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]domain.TemplateSummary, error) {
	entries, err := os.ReadDir(s.templateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir: %w", err)
	}

	var out []domain.TemplateSummary
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !isTemplateExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		tmpl, err := s.load(name)
		if err != nil {
			logger.WarnLog(ctx, "skipping template %s: %v", entry.Name(), err)
			continue
		}
		summary := domain.TemplateSummary{Name: name}
		for _, sheet := range tmpl.Sheets {
			summary.Sheets = append(summary.Sheets, sheet.Name)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Render builds the workbook of the named template.
func (s *TemplateService) Render(ctx context.Context, name string) ([]byte, error) {
	tmpl, err := s.load(name)
	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "rendering template %s", name)
	return s.render(ctx, tmpl)
}

// RenderYAML builds the workbook of an ad hoc YAML template.
func (s *TemplateService) RenderYAML(ctx context.Context, yamlConfig []byte) ([]byte, error) {
	tmpl, err := simpleexcel.ParseTemplate(yamlConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return s.render(ctx, tmpl)
}

func (s *TemplateService) load(name string) (*simpleexcel.ReportTemplate, error) {
	if !templateName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	for _, ext := range templateExtensions {
		data, err := os.ReadFile(filepath.Join(s.templateDir, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := simpleexcel.ParseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, name, err)
		}
		return tmpl, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

func (s *TemplateService) render(ctx context.Context, tmpl *simpleexcel.ReportTemplate) ([]byte, error) {
	exporter := simpleexcel.NewExcelDataExporterFromTemplate(tmpl)
	if err := s.resolveDictionaries(ctx, exporter); err != nil {
		return nil, err
	}

	opts := append([]dropdown.Option{}, s.dropdownOpts...)
	opts = append(opts, dropdown.WithLogger(logger.Get(ctx)))
	exporter.WithDropdownOptions(opts...)

	data, err := exporter.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return data, nil
}

type resolvedLookup struct {
	lookup simpleexcel.DictionaryLookup
	values simpleexcel.DictionaryValues
}

// resolveDictionaries fetches every dictionary the exporter needs on a pool of
// workers and binds the results.
func (s *TemplateService) resolveDictionaries(ctx context.Context, exporter *simpleexcel.ExcelDataExporter) error {
	lookups := exporter.Lookups()
	if len(lookups) == 0 {
		return nil
	}

	p := dataflow.New(ctx)
	defer p.Stop()

	results := dataflow.Map(p, dataflow.From(p, lookups...), s.lookup,
		dataflow.WithWorkers(s.workers),
		dataflow.WithBufferSize(len(lookups)),
		dataflow.WithRetry(lookupRetries, func(attempt int) time.Duration {
			return time.Duration(attempt) * 50 * time.Millisecond
		}),
		dataflow.WithRetryIf(func(err error) bool {
			return !errors.Is(err, domain.ErrDictionaryNotFound)
		}),
	)
	resolved, err := dataflow.Collect(p, results)
	if err != nil {
		return err
	}
	for _, r := range resolved {
		exporter.BindDictionary(r.lookup, r.values)
	}
	logger.DebugLog(ctx, "resolved %d dictionaries", len(resolved))
	return nil
}

func (s *TemplateService) lookup(ctx context.Context, l simpleexcel.DictionaryLookup) (resolvedLookup, error) {
	r := resolvedLookup{lookup: l}
	var err error
	if l.Children {
		r.values.Children, err = s.dict.Children(ctx, l.Dictionary)
	} else {
		r.values.Options, err = s.dict.Options(ctx, l.Dictionary)
	}
	if err != nil {
		return r, fmt.Errorf("failed to load dictionary %s: %w", l.Dictionary, err)
	}
	return r, nil
}

func isTemplateExt(ext string) bool {
	for _, e := range templateExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
