package dropdown

import (
	"github.com/xuri/excelize/v2"
)

// Messages holds the user-facing texts attached to every dropdown rule.
type Messages struct {
	PromptTitle string
	Prompt      string
	ErrorTitle  string
	Error       string
}

// DefaultMessages returns the texts used when none are configured.
func DefaultMessages() Messages {
	return Messages{
		PromptTitle: "Select a value",
		Prompt:      "Choose a value from the dropdown list.",
		ErrorTitle:  "Invalid value",
		Error:       "The value is not in the list. Please pick one from the dropdown.",
	}
}

// attachList registers an inline list rule on sqref.
func (p *Placer) attachList(sheet, sqref string, options []string) error {
	return p.attach(sheet, sqref, func(dv *excelize.DataValidation) error {
		return dv.SetDropList(options)
	})
}

// attachFormula registers a list rule whose source is a formula, either a
// defined name or an INDIRECT lookup.
func (p *Placer) attachFormula(sheet, sqref, formula string) error {
	return p.attach(sheet, sqref, func(dv *excelize.DataValidation) error {
		dv.SetSqrefDropList(formula)
		return nil
	})
}

func (p *Placer) attach(sheet, sqref string, set func(*excelize.DataValidation) error) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = sqref
	// ShowDropDown=true would hide the in-cell arrow.
	dv.ShowDropDown = false
	if err := set(dv); err != nil {
		return newGenerationError(sheet, "validation", err)
	}

	msgs := p.cfg.messages
	dv.SetError(excelize.DataValidationErrorStyleStop, msgs.ErrorTitle, msgs.Error)
	if msgs.Prompt != "" {
		dv.SetInput(msgs.PromptTitle, msgs.Prompt)
	}

	if err := p.file.AddDataValidation(sheet, dv); err != nil {
		return newGenerationError(sheet, "validation", err)
	}
	return nil
}
