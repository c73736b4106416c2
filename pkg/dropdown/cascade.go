package dropdown

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// placeCascade renders a two-level dropdown.
//
// Auxiliary sheet layout: row 1 holds the first-level options, one per column.
// Below each option its children are listed top-down. Every option is defined
// as a name scoped to the target sheet covering its child cells, so that
// INDIRECT(<first-level cell>) on the target sheet yields the child list.
func (p *Placer) placeCascade(sheet string, pl placement) error {
	d := pl.desc
	sw, err := p.newAuxSheet(pl.auxSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(d.Options))
	for i, opt := range d.Options {
		header[i] = opt
	}
	if err := sw.SetRow("A1", header); err != nil {
		return newGenerationError(pl.auxSheet, "stream", err)
	}
	if err := writeChildren(sw, d); err != nil {
		return newGenerationError(pl.auxSheet, "stream", err)
	}
	if err := p.closeAuxSheet(sw); err != nil {
		return err
	}

	ref, err := areaRef(pl.auxSheet, 0, 0, len(d.Options)-1, 0)
	if err != nil {
		return err
	}
	if err := p.defineName(pl.listName, ref, ""); err != nil {
		return err
	}

	for i, opt := range d.Options {
		// An option without children still spans one blank cell so its name resolves.
		n := len(d.ChildOptions[opt])
		if n < 1 {
			n = 1
		}
		ref, err := areaRef(pl.auxSheet, i, 1, i, n+1)
		if err != nil {
			return err
		}
		if err := p.defineName(opt, ref, sheet); err != nil {
			return err
		}
	}

	sqref, err := columnSqref(d.Column, 1, p.cfg.maxRows)
	if err != nil {
		return err
	}
	if err := p.attachFormula(sheet, sqref, pl.listName); err != nil {
		return err
	}

	parent, err := ColumnLetters(d.Column)
	if err != nil {
		return err
	}
	for row := 1; row <= p.cfg.maxCascadeRows; row++ {
		cell, err := cellName(d.ChildColumn, row)
		if err != nil {
			return err
		}
		formula := fmt.Sprintf("INDIRECT($%s%d)", parent, row+1)
		if err := p.attachFormula(sheet, cell, formula); err != nil {
			return err
		}
	}
	return nil
}

// writeChildren streams the child lists below the header row. Rows are filled
// breadth-first: each row takes the next child of every option, leaving a blank
// where an option has run out, so stream rows are written in increasing order.
func writeChildren(sw *excelize.StreamWriter, d Descriptor) error {
	pending := make([][]string, len(d.Options))
	for i, opt := range d.Options {
		pending[i] = d.ChildOptions[opt]
	}

	for row := 2; ; row++ {
		values := make([]interface{}, len(pending))
		more := false
		for i, children := range pending {
			if len(children) == 0 {
				continue
			}
			values[i] = children[0]
			pending[i] = children[1:]
			more = true
		}
		if !more {
			return nil
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
}
