package ports

import (
	"perfgate/domain/workflow"
)

// PeriodReader loads named measurement windows from an external source
// (spreadsheet, CSV export, upstream collector). Column/sheet layout is an
// adapter concern; the core only sees the ordered PeriodSet.
type PeriodReader interface {
	ReadPeriods() (*workflow.PeriodSet, error)
}
