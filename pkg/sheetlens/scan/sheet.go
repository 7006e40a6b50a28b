package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// ErrEmptyRegion signals that a worksheet has no used region to walk.
var ErrEmptyRegion = errors.New("worksheet has no used region")

// SheetScanner drives the full analysis of one worksheet: block streaming,
// literal classification, severity assessment, complexity scoring, and the
// finalization pass. The collaborator fields may be replaced before the
// first Scan call; NewSheetScanner fills them with defaults.
type SheetScanner struct {
	Host       Host
	Config     Config
	Classifier *Classifier
	Severity   *SeverityModel
	Scorer     *Scorer
	Progress   Progress
}

// NewSheetScanner returns a scanner over h with default collaborators.
func NewSheetScanner(h Host, cfg Config) *SheetScanner {
	return &SheetScanner{
		Host:       h,
		Config:     cfg,
		Classifier: NewClassifier(),
		Severity:   NewSeverityModel(DefaultSeverityThresholds()),
		Scorer:     NewScorer(nil),
	}
}

// Scan analyzes one worksheet. Sheets with no used region terminate as
// skipped; sheets at or above the massive-cell threshold degrade to skim
// mode with aggregate counts only. Host read failures are fatal and
// propagate; ctx cancellation is honored between blocks.
func (s *SheetScanner) Scan(ctx context.Context, sheet string) (*models.SheetResult, error) {
	res := &models.SheetResult{Name: sheet}

	extent, ok, err := s.Host.UsedRange(sheet)
	if err != nil {
		return nil, fmt.Errorf("used range: %w", err)
	}
	if !ok {
		res.Mode = models.ModeSkipped
		res.FallbackReason = "no used region"
		return res, nil
	}

	if extent.CellCount() >= s.Config.massiveThreshold() {
		return s.skim(sheet, extent, res)
	}
	return s.stream(ctx, sheet, extent, res)
}

// skim produces aggregate counts only, for sheets too large to stream.
// A bulk-count failure downgrades further to a skipped result rather than
// aborting the workbook.
func (s *SheetScanner) skim(sheet string, extent models.Extent, res *models.SheetResult) (*models.SheetResult, error) {
	s.Progress.Emit(fmt.Sprintf("%s: %d cells, switching to skim mode", sheet, extent.CellCount()))

	formulas, err := s.Host.CountCells(sheet, CountFormulas)
	if err == nil {
		var constants int
		constants, err = s.Host.CountCells(sheet, CountConstants)
		if err == nil {
			res.Mode = models.ModeSkim
			res.FallbackReason = fmt.Sprintf("sheet exceeds %d cells; aggregate counts only", s.Config.massiveThreshold())
			res.CellCount = extent.CellCount()
			res.FormulaCount = formulas
			res.ValueCount = constants
			return res, nil
		}
	}

	res.Mode = models.ModeSkipped
	res.FallbackReason = fmt.Sprintf("bulk cell count failed: %v", err)
	return res, nil
}

func (s *SheetScanner) stream(ctx context.Context, sheet string, extent models.Extent, res *models.SheetResult) (*models.SheetResult, error) {
	res.Mode = models.ModeStreaming
	res.CellCount = extent.CellCount()

	var (
		byKey    = map[string]*models.FormulaInfo{}
		order    []*models.FormulaInfo
		pending  []*models.Finding
		capHit   bool
		findCap  = s.Config.findingCap()
		cellCap  = s.Config.sampleCap()
		cursor   = NewCursor(extent, s.Config.blockRows(), s.Config.blockCols())
		blockNum = 0
	)

	for {
		rect, ok := cursor.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		block, err := s.Host.ReadBlock(sheet, rect)
		if err != nil {
			return nil, fmt.Errorf("read block %s: %w", rect.Ref(), err)
		}
		blockNum++
		s.Progress.Emit(fmt.Sprintf("%s: block %d (%s)", sheet, blockNum, rect.Ref()))

		for r := 0; r < rect.Rows; r++ {
			for c := 0; c < rect.Cols; c++ {
				absRow := rect.Row + r
				absCol := rect.Col + c
				formula := block.Formulas[r][c]
				value := block.Values[r][c]

				if formula == "" {
					if value != "" {
						res.ValueCount++
					}
					continue
				}
				if value == "" && !s.Config.IncludeEmptyCells {
					continue
				}
				res.FormulaCount++

				isArray := block.Array[r][c]
				s.recordFormula(byKey, &order, formula, isArray, absRow, absCol, cellCap)

				for _, lit := range s.Classifier.Literals(formula) {
					sev, rationale, fix, keep := s.Severity.Assess(lit)
					if !keep {
						continue
					}
					if len(pending) >= findCap {
						capHit = true
						continue
					}
					pending = append(pending, &models.Finding{
						Cell:      models.CellName(absRow, absCol),
						Literal:   lit,
						Severity:  sev,
						Rationale: rationale,
						Fix:       fix,
					})
				}
			}
		}
		// Block dropped here; nothing from it outlives the iteration.
	}

	s.finalize(res, order, pending)
	if capHit {
		s.Progress.Emit(fmt.Sprintf("%s: finding cap (%d) reached, further findings dropped", sheet, findCap))
	}
	return res, nil
}

// recordFormula updates the per-unique-formula aggregate for one instance.
func (s *SheetScanner) recordFormula(byKey map[string]*models.FormulaInfo, order *[]*models.FormulaInfo, formula string, isArray bool, row, col, cellCap int) {
	key := formula
	if s.Config.GroupSimilarFormulas {
		key = s.Classifier.NormalizeRefs(formula)
	}

	fi := byKey[key]
	if fi == nil {
		fi = &models.FormulaInfo{Key: key, Text: "=" + formula}
		byKey[key] = fi
		*order = append(*order, fi)
	}
	fi.Count++
	if isArray {
		fi.Array = true
	}
	if len(fi.Cells) < cellCap {
		fi.Cells = append(fi.Cells, models.CellName(row, col))
	}
}

// finalize runs the sheet-wide pass that makes results final: complexity
// scores over accumulated usage counts, repetition statistics grouped by
// literal display value, and the undocumented-parameter flag for
// High/Medium findings that repeat.
func (s *SheetScanner) finalize(res *models.SheetResult, order []*models.FormulaInfo, pending []*models.Finding) {
	for _, fi := range order {
		fi.Score = s.Scorer.Score(fi.Text, fi.Array, fi.Count)
		fi.Band = BandFor(fi.Score)
	}
	res.Formulas = order

	repetition := map[string]int{}
	for _, f := range pending {
		repetition[f.Literal.Display]++
	}
	for _, f := range pending {
		f.Repetition = repetition[f.Literal.Display]
		if f.Repetition > 1 && (f.Severity == models.SeverityHigh || f.Severity == models.SeverityMedium) {
			f.LikelyParameter = true
		}
		res.Findings.Add(f)
	}
}
