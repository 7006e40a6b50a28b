package scan

// Tuned engine defaults. The block dimensions and the massive-sheet
// threshold are configuration, not invariants; callers may override them
// per workbook.
const (
	DefaultBlockRows = 200
	DefaultBlockCols = 120

	// DefaultMassiveCellThreshold is the used-region cell count at which a
	// sheet is skimmed instead of streamed.
	DefaultMassiveCellThreshold = 150000

	// DefaultSampleCellCap bounds the instance addresses stored per unique
	// formula; DefaultFindingCap bounds retained findings per sheet. These
	// two caps are what keep peak memory independent of sheet size.
	DefaultSampleCellCap = 200
	DefaultFindingCap    = 400
)

// Config carries the engine knobs for one worksheet scan or map run.
type Config struct {
	BlockRows int
	BlockCols int

	MassiveCellThreshold int
	SampleCellCap        int
	FindingCap           int

	// IncludeEmptyCells counts formula cells whose resolved value is blank.
	IncludeEmptyCells bool
	// GroupSimilarFormulas groups unique formulas by reference-normalized
	// text instead of exact text.
	GroupSimilarFormulas bool
}

// DefaultConfig returns the tuned default engine configuration.
func DefaultConfig() Config {
	return Config{
		BlockRows:            DefaultBlockRows,
		BlockCols:            DefaultBlockCols,
		MassiveCellThreshold: DefaultMassiveCellThreshold,
		SampleCellCap:        DefaultSampleCellCap,
		FindingCap:           DefaultFindingCap,
		IncludeEmptyCells:    true,
	}
}

func (c Config) blockRows() int {
	if c.BlockRows <= 0 {
		return DefaultBlockRows
	}
	return c.BlockRows
}

func (c Config) blockCols() int {
	if c.BlockCols <= 0 {
		return DefaultBlockCols
	}
	return c.BlockCols
}

func (c Config) massiveThreshold() int {
	if c.MassiveCellThreshold <= 0 {
		return DefaultMassiveCellThreshold
	}
	return c.MassiveCellThreshold
}

func (c Config) sampleCap() int {
	if c.SampleCellCap <= 0 {
		return DefaultSampleCellCap
	}
	return c.SampleCellCap
}

func (c Config) findingCap() int {
	if c.FindingCap <= 0 {
		return DefaultFindingCap
	}
	return c.FindingCap
}
