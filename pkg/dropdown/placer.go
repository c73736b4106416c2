// Package dropdown attaches in-cell dropdown validations, including two-level
// cascading dropdowns, to a worksheet of an excelize workbook.
//
// Small option lists are written inline into the validation formula. Larger
// lists are written to a hidden auxiliary sheet and referenced through a
// defined name. Cascading dropdowns get an auxiliary sheet whose first row holds
// the first-level options; every option names the range of its children so the
// second-level rule can resolve it with INDIRECT.
//
// Row caps: single-level rules and first-level cascading rules cover data rows
// 1..1000, second-level cascading rules cover rows 1..100 (one rule per row).
// Rows past the caps are left unconstrained.
package dropdown

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"
)

// Strategy is the way a descriptor is rendered into the workbook.
type Strategy int

const (
	// StrategyInline writes the options into the validation formula.
	StrategyInline Strategy = iota
	// StrategySheetList writes the options to a hidden sheet behind a defined name.
	StrategySheetList
	// StrategyCascade builds a two-level dropdown resolved with INDIRECT.
	StrategyCascade
)

func (s Strategy) String() string {
	switch s {
	case StrategyInline:
		return "inline"
	case StrategySheetList:
		return "sheet_list"
	case StrategyCascade:
		return "cascade"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

const (
	listPrefix    = "dd_list"
	cascadePrefix = "dd_cascade"
	workbookScope = "Workbook"
)

// Placer places dropdowns into one workbook. Its counters are private to the
// instance, so exports running on different workbooks never share state.
// A Placer is not safe for concurrent use.
type Placer struct {
	file *excelize.File
	cfg  *config
	seq  int
}

// placement is a validated descriptor with its resolved strategy and names.
type placement struct {
	desc     Descriptor
	strategy Strategy
	auxSheet string
	listName string
}

// NewPlacer returns a Placer writing into f.
func NewPlacer(f *excelize.File, opts ...Option) *Placer {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return &Placer{file: f, cfg: cfg}
}

// StrategyFor reports how d would be rendered.
func (p *Placer) StrategyFor(d Descriptor) Strategy {
	if d.IsCascading() {
		return StrategyCascade
	}
	if len(d.Options) <= p.cfg.inlineLimit && inlineable(d.Options) {
		return StrategyInline
	}
	return StrategySheetList
}

// inlineable reports whether options survive the quoted, comma separated
// inline formula and its length limit. A list led by "=" is written as a
// raw formula, so any option starting with "=" is kept on a sheet instead.
func inlineable(options []string) bool {
	for _, opt := range options {
		if strings.ContainsAny(opt, `,"`) || strings.HasPrefix(opt, "=") {
			return false
		}
	}
	formula := strings.Join(options, ",")
	return len(utf16.Encode([]rune(formula))) <= excelize.MaxFieldLength
}

// Apply attaches every descriptor to sheet. All descriptors are checked before
// the workbook is modified. On error the workbook must be discarded.
func (p *Placer) Apply(sheet string, descriptors []Descriptor) error {
	if idx, err := p.file.GetSheetIndex(sheet); err != nil || idx == -1 {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	plans, err := p.plan(sheet, descriptors)
	if err != nil {
		return err
	}

	log := p.cfg.logger.With().Str("sheet", sheet).Logger()
	for _, pl := range plans {
		log.Debug().
			Int("column", pl.desc.Column).
			Int("options", len(pl.desc.Options)).
			Stringer("strategy", pl.strategy).
			Msg("placing dropdown")

		switch pl.strategy {
		case StrategyInline:
			err = p.placeInline(sheet, pl)
		case StrategySheetList:
			err = p.placeSheetList(sheet, pl)
		case StrategyCascade:
			err = p.placeCascade(sheet, pl)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// plan validates the descriptors and assigns names. It does not touch the workbook.
func (p *Placer) plan(sheet string, descriptors []Descriptor) ([]placement, error) {
	used := make(map[int]int)
	var active []Descriptor
	for i, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i, err)
		}
		if len(d.Options) == 0 {
			p.cfg.logger.Debug().Str("sheet", sheet).Int("column", d.Column).Msg("skipping dropdown without options")
			continue
		}
		for _, col := range d.columns() {
			if prev, ok := used[col]; ok {
				return nil, fmt.Errorf("%w: column %d is used by descriptors %d and %d", ErrDescriptorConflict, col, prev, i)
			}
			used[col] = i
		}
		active = append(active, d)
	}
	if len(active) == 0 {
		return nil, nil
	}

	names := p.existingNames()
	seq := p.nextSequence(active, names)

	plans := make([]placement, 0, len(active))
	for _, d := range active {
		pl := placement{desc: d, strategy: p.StrategyFor(d)}
		switch pl.strategy {
		case StrategySheetList:
			pl.auxSheet = auxName(listPrefix, seq, d.Column)
			pl.listName = pl.auxSheet
		case StrategyCascade:
			pl.auxSheet = auxName(cascadePrefix, seq, d.Column)
			pl.listName = pl.auxSheet
			for _, opt := range d.Options {
				key := nameKey(sheet, opt)
				if names[key] {
					return nil, fmt.Errorf("%w: range name %q already exists on sheet %q", ErrNameCollision, opt, sheet)
				}
				names[key] = true
			}
		}
		plans = append(plans, pl)
	}
	return plans, nil
}

// nextSequence reserves a sequence number whose auxiliary sheet and workbook
// names are all free.
func (p *Placer) nextSequence(active []Descriptor, names map[string]bool) int {
	for {
		p.seq++
		free := true
		for _, d := range active {
			for _, prefix := range []string{listPrefix, cascadePrefix} {
				name := auxName(prefix, p.seq, d.Column)
				if idx, _ := p.file.GetSheetIndex(name); idx != -1 || names[nameKey(workbookScope, name)] {
					free = false
				}
			}
		}
		if free {
			return p.seq
		}
	}
}

func (p *Placer) existingNames() map[string]bool {
	names := make(map[string]bool)
	for _, dn := range p.file.GetDefinedName() {
		names[nameKey(dn.Scope, dn.Name)] = true
	}
	return names
}

func auxName(prefix string, seq, column int) string {
	return prefix + "_" + strconv.Itoa(seq) + "_" + strconv.Itoa(column)
}

// nameKey identifies a defined name; names are case-insensitive.
func nameKey(scope, name string) string {
	return scope + "!" + strings.ToLower(name)
}

func (p *Placer) placeInline(sheet string, pl placement) error {
	sqref, err := columnSqref(pl.desc.Column, 1, p.cfg.maxRows)
	if err != nil {
		return err
	}
	return p.attachList(sheet, sqref, pl.desc.Options)
}

func (p *Placer) placeSheetList(sheet string, pl placement) error {
	d := pl.desc
	sw, err := p.newAuxSheet(pl.auxSheet)
	if err != nil {
		return err
	}
	for i, opt := range d.Options {
		cell, _ := cellName(0, i)
		if err := sw.SetRow(cell, []interface{}{opt}); err != nil {
			return newGenerationError(pl.auxSheet, "stream", err)
		}
	}
	if err := p.closeAuxSheet(sw); err != nil {
		return err
	}

	ref, err := areaRef(pl.auxSheet, 0, 0, 0, len(d.Options)-1)
	if err != nil {
		return err
	}
	if err := p.defineName(pl.listName, ref, ""); err != nil {
		return err
	}

	sqref, err := columnSqref(d.Column, 1, p.cfg.maxRows)
	if err != nil {
		return err
	}
	return p.attachFormula(sheet, sqref, pl.listName)
}

// newAuxSheet creates an auxiliary sheet and opens a stream writer on it.
// Rows must be written in increasing order.
func (p *Placer) newAuxSheet(name string) (*excelize.StreamWriter, error) {
	if _, err := p.file.NewSheet(name); err != nil {
		return nil, newGenerationError(name, "aux_sheet", err)
	}
	sw, err := p.file.NewStreamWriter(name)
	if err != nil {
		return nil, newGenerationError(name, "aux_sheet", err)
	}
	return sw, nil
}

// closeAuxSheet flushes the stream and hides the sheet.
func (p *Placer) closeAuxSheet(sw *excelize.StreamWriter) error {
	if err := sw.Flush(); err != nil {
		return newGenerationError(sw.Sheet, "stream", err)
	}
	if err := p.file.SetSheetVisible(sw.Sheet, false); err != nil {
		return newGenerationError(sw.Sheet, "visibility", err)
	}
	return nil
}

// defineName registers a defined name. An empty scope means workbook scope.
func (p *Placer) defineName(name, refersTo, scope string) error {
	err := p.file.SetDefinedName(&excelize.DefinedName{
		Name:     name,
		RefersTo: refersTo,
		Scope:    scope,
	})
	if err != nil {
		sheet := scope
		if sheet == "" {
			sheet = workbookScope
		}
		return newGenerationError(sheet, "defined_name", fmt.Errorf("%s: %w", name, err))
	}
	return nil
}
