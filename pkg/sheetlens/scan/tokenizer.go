package scan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/efp"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// dateTimeFuncs are functions whose early arguments are usually literal
// date/time parts typed in by the author rather than derived values.
var dateTimeFuncs = map[string]bool{
	"DATE":      true,
	"DATEVALUE": true,
	"TIME":      true,
	"TIMEVALUE": true,
	"EDATE":     true,
	"EOMONTH":   true,
	"DATEDIF":   true,
	"WORKDAY":   true,
}

// recognizedConstants are named mathematical/boolean constants that carry
// no review value when written literally.
var recognizedConstants = map[string]bool{
	"TRUE":  true,
	"FALSE": true,
	"PI":    true,
	"E":     true,
	"NA":    true,
	"N/A":   true,
	"NULL":  true,
	"NONE":  true,
	"INF":   true,
	"NAN":   true,
}

var (
	dateLiteralRe = regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}$`)
	timeLiteralRe = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?\s?([AaPp][Mm])?$`)
	hexLiteralRe  = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|#[0-9A-Fa-f]{3,8})$`)
)

// Classifier tokenizes formulas and extracts hard-coded literal candidates
// with their enclosing-context metadata. The zero value is not usable;
// construct with NewClassifier.
type Classifier struct {
	parser efp.Parser
}

// NewClassifier returns a ready classifier.
func NewClassifier() *Classifier {
	return &Classifier{parser: efp.ExcelParser()}
}

// funcCtx is one frame of the enclosing-function stack kept while walking
// the token stream.
type funcCtx struct {
	name      string
	arg       int
	arraySpan int // > 0 when the frame is an array-constant span
}

// Literals extracts the hard-coded literals of a formula, ordered by
// position, with offsets into the original text. Benign literals
// (recognized constants, boolean and single-character flags) are filtered
// out. Tokenization failure degrades to a regex pass over bare numbers and
// quoted strings; this function never panics into the caller.
func (c *Classifier) Literals(formula string) []models.Literal {
	src := strings.TrimPrefix(formula, "=")
	if src == "" {
		return nil
	}

	lits, ok := c.tokenize(src)
	if !ok {
		lits = fallbackLiterals(src)
	}

	out := lits[:0]
	for _, l := range lits {
		if !l.Benign() {
			out = append(out, l)
		}
	}
	return out
}

// tokenize runs the efp token walk. ok is false when parsing failed and the
// caller should fall back to regex extraction.
func (c *Classifier) tokenize(src string) (lits []models.Literal, ok bool) {
	defer func() {
		if recover() != nil {
			lits, ok = nil, false
		}
	}()

	tokens := c.parser.Parse(src)
	if tokens == nil {
		return nil, false
	}

	var (
		stack     []funcCtx
		pos       int // search cursor into src for offset recovery
		spanSeq   int
		spanOf    = map[int]int{} // literal index -> innermost array span
		spanKinds = map[int]map[models.LiteralKind]bool{}
	)

	topFunc := func() (string, int) {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].arraySpan == 0 {
				return stack[i].name, stack[i].arg
			}
		}
		return "", 0
	}
	inSpan := func() int {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].arraySpan > 0 {
				return stack[i].arraySpan
			}
		}
		return 0
	}

	for i, tok := range tokens {
		switch tok.TType {
		case efp.TokenTypeFunction:
			if tok.TSubType == efp.TokenSubTypeStart {
				frame := funcCtx{name: strings.ToUpper(tok.TValue)}
				if frame.name == "ARRAY" || frame.name == "ARRAYROW" {
					spanSeq++
					frame.arraySpan = spanSeq
				}
				stack = append(stack, frame)
			} else if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case efp.TokenTypeArgument:
			if len(stack) > 0 {
				stack[len(stack)-1].arg++
			}
		case efp.TokenTypeOperand:
			fn, arg := topFunc()
			l, emit := classifyOperand(tok, tokens, i, fn, arg)
			// Advance the offset cursor for every operand, emitted or
			// not, so a reference like A5 cannot shadow a later bare 5.
			offset, length := locate(src, &pos, tok)
			if !emit {
				continue
			}
			l.Offset, l.Length = offset, length
			if span := inSpan(); span > 0 {
				spanOf[len(lits)] = span
				if spanKinds[span] == nil {
					spanKinds[span] = map[models.LiteralKind]bool{}
				}
				spanKinds[span][l.Kind] = true
			}
			lits = append(lits, l)
		}
	}

	// Array re-tag pass: literals inside an array-constant span become
	// array-typed, flagged mixed when the span holds more than one kind.
	for idx, span := range spanOf {
		lits[idx].Kind = models.LiteralArray
		lits[idx].MixedTypes = len(spanKinds[span]) > 1
	}
	return lits, true
}

// classifyOperand maps one operand token to a candidate literal. emit is
// false for plain range references, which are not literals.
func classifyOperand(tok efp.Token, tokens []efp.Token, i int, fn string, arg int) (models.Literal, bool) {
	l := models.Literal{
		Raw:      tok.TValue,
		Display:  tok.TValue,
		Function: fn,
		ArgIndex: arg,
	}

	switch tok.TSubType {
	case efp.TokenSubTypeNumber:
		l.Kind = models.LiteralNumeric
		if nextPostfixPercent(tokens, i) {
			l.Kind = models.LiteralPercentage
			l.Display = tok.TValue + "%"
		}
		if dateTimeFuncs[fn] && arg <= 2 {
			l.LikelyInput = true
		}
		return l, true

	case efp.TokenSubTypeLogical:
		l.Kind = models.LiteralBoolean
		l.Flag = true
		return l, true

	case efp.TokenSubTypeText:
		l.Display = `"` + tok.TValue + `"`
		switch {
		case len(tok.TValue) == 1:
			l.Kind = models.LiteralString
			l.Flag = true
		case recognizedConstants[strings.ToUpper(tok.TValue)]:
			l.Kind = models.LiteralString
			l.RecognizedConstant = true
		case dateLiteralRe.MatchString(tok.TValue):
			l.Kind = models.LiteralDate
			if dateTimeFuncs[fn] && arg <= 2 {
				l.LikelyInput = true
			}
		case timeLiteralRe.MatchString(tok.TValue):
			l.Kind = models.LiteralTime
			if dateTimeFuncs[fn] && arg <= 2 {
				l.LikelyInput = true
			}
		case hexLiteralRe.MatchString(tok.TValue):
			l.Kind = models.LiteralHex
		default:
			l.Kind = models.LiteralString
		}
		return l, true

	case efp.TokenSubTypeRange:
		v := tok.TValue
		if strings.Contains(v, "[") && strings.Contains(v, "!") {
			// sheet qualifier from another workbook
			l.Kind = models.LiteralExternal
			return l, true
		}
		if isBareName(v) {
			l.Kind = models.LiteralNamed
			l.RecognizedConstant = recognizedConstants[strings.ToUpper(v)]
			return l, true
		}
		return models.Literal{}, false
	}
	return models.Literal{}, false
}

// nextPostfixPercent reports whether the token after index i is the percent
// postfix operator, skipping whitespace tokens.
func nextPostfixPercent(tokens []efp.Token, i int) bool {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].TType == efp.TokenTypeWhitespace {
			continue
		}
		return tokens[j].TType == efp.TokenTypeOperatorPostfix && tokens[j].TValue == "%"
	}
	return false
}

// isBareName reports whether a range-subtype operand is a plain identifier
// (a defined name) rather than a cell or range reference.
func isBareName(v string) bool {
	if v == "" || strings.ContainsAny(v, "!:$[]' ") {
		return false
	}
	if v[0] >= '0' && v[0] <= '9' {
		return false
	}
	// A valid A1 reference (letters then digits) is not a name.
	i := 0
	for i < len(v) && isRefAlpha(v[i]) {
		i++
	}
	if i > 0 && i <= 3 && i < len(v) {
		allDigits := true
		for j := i; j < len(v); j++ {
			if v[j] < '0' || v[j] > '9' {
				allDigits = false
				break
			}
		}
		if allDigits && models.ColumnNumber(v[:i]) <= models.MaxColumns {
			return false
		}
	}
	for j := 0; j < len(v); j++ {
		c := v[j]
		if !isRefAlpha(c) && (c < '0' || c > '9') && c != '_' && c != '.' {
			return false
		}
	}
	return true
}

func isRefAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// locate recovers the source offset and length of a token. efp tokens do
// not carry positions, so the original text is searched forward from the
// previous hit; text operands are searched in their quoted form first.
func locate(src string, pos *int, tok efp.Token) (offset, length int) {
	needles := []string{tok.TValue}
	if tok.TSubType == efp.TokenSubTypeText {
		needles = []string{`"` + strings.ReplaceAll(tok.TValue, `"`, `""`) + `"`, tok.TValue}
	}
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if idx := strings.Index(src[*pos:], needle); idx >= 0 {
			offset = *pos + idx
			length = len(needle)
			*pos = offset + length
			return offset, length
		}
	}
	// Not found verbatim (parser normalization); pin to the cursor.
	return *pos, len(tok.TValue)
}

// NormalizeRefs rewrites a formula to canonical text with every range
// reference replaced by a placeholder, so formulas differing only in the
// cells they point at compare equal. Falls back to the input text when
// tokenization fails.
func (c *Classifier) NormalizeRefs(formula string) (norm string) {
	src := strings.TrimPrefix(formula, "=")
	defer func() {
		if recover() != nil {
			norm = src
		}
	}()

	tokens := c.parser.Parse(src)
	if tokens == nil {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))
	for _, tok := range tokens {
		switch tok.TType {
		case efp.TokenTypeFunction:
			if tok.TSubType == efp.TokenSubTypeStart {
				b.WriteString(strings.ToUpper(tok.TValue))
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeSubexpression:
			if tok.TSubType == efp.TokenSubTypeStart {
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeArgument:
			b.WriteByte(',')
		case efp.TokenTypeOperand:
			switch tok.TSubType {
			case efp.TokenSubTypeRange:
				if isBareName(tok.TValue) {
					b.WriteString(tok.TValue)
				} else {
					b.WriteString("REF")
				}
			case efp.TokenSubTypeText:
				b.WriteByte('"')
				b.WriteString(tok.TValue)
				b.WriteByte('"')
			default:
				b.WriteString(tok.TValue)
			}
		case efp.TokenTypeWhitespace:
			// dropped: spacing differences never distinguish formulas
		default:
			b.WriteString(tok.TValue)
		}
	}
	return b.String()
}

var (
	fallbackNumberRe = regexp.MustCompile(`-?\d+(\.\d+)?%?`)
	fallbackStringRe = regexp.MustCompile(`"([^"]|"")*"`)
)

// fallbackLiterals is the conservative extraction used when tokenization
// fails: bare numbers and quoted strings only, no context metadata. It
// keeps the scan moving at the cost of precision.
func fallbackLiterals(src string) []models.Literal {
	var lits []models.Literal

	for _, loc := range fallbackStringRe.FindAllStringIndex(src, -1) {
		raw := src[loc[0]+1 : loc[1]-1]
		lits = append(lits, models.Literal{
			Kind:    models.LiteralString,
			Raw:     raw,
			Display: `"` + raw + `"`,
			Offset:  loc[0],
			Length:  loc[1] - loc[0],
			Flag:    len(raw) == 1,
		})
	}

	for _, loc := range fallbackNumberRe.FindAllStringIndex(src, -1) {
		// Skip digits that belong to a reference or identifier.
		if loc[0] > 0 {
			p := src[loc[0]-1]
			if isRefAlpha(p) || p == '$' || p == '_' || p == '"' {
				continue
			}
		}
		if insideAny(lits, loc[0]) {
			continue
		}
		raw := src[loc[0]:loc[1]]
		kind := models.LiteralNumeric
		if strings.HasSuffix(raw, "%") {
			kind = models.LiteralPercentage
			raw = strings.TrimSuffix(raw, "%")
		}
		lits = append(lits, models.Literal{
			Kind:    kind,
			Raw:     raw,
			Display: src[loc[0]:loc[1]],
			Offset:  loc[0],
			Length:  loc[1] - loc[0],
		})
	}

	// Restore positional order after the two passes.
	for i := 1; i < len(lits); i++ {
		for j := i; j > 0 && lits[j-1].Offset > lits[j].Offset; j-- {
			lits[j-1], lits[j] = lits[j], lits[j-1]
		}
	}
	return lits
}

func insideAny(lits []models.Literal, off int) bool {
	for _, l := range lits {
		if off >= l.Offset && off < l.Offset+l.Length {
			return true
		}
	}
	return false
}

// NumericValue parses the literal's raw text as a number, for severity
// banding. ok is false for non-numeric kinds.
func NumericValue(l models.Literal) (float64, bool) {
	switch l.Kind {
	case models.LiteralNumeric, models.LiteralPercentage:
		v, err := strconv.ParseFloat(l.Raw, 64)
		return v, err == nil
	}
	return 0, false
}
