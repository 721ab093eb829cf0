package pdfsource

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"label-scanner/internal/carriers"
)

const (
	// RowTolerance is the baseline distance (points) within which glyphs share a row
	RowTolerance = 2.0

	// WordGapFactor times the font size is the horizontal gap that splits words
	WordGapFactor = 0.3

	// defaultCharWidth is used for layout columns when glyph widths are missing
	defaultCharWidth = 5.0
)

// Glyph is one positioned text run as reported by the PDF content stream.
// X and Y use the PDF bottom-left origin; Y is the baseline.
type Glyph struct {
	S        string
	X        float64
	Y        float64
	W        float64
	FontSize float64
}

// row is a set of glyphs sharing a baseline
type row struct {
	y      float64
	glyphs []Glyph
}

// positionedWord is a word before coordinate conversion
type positionedWord struct {
	text     string
	x0       float64
	baseline float64
	fontSize float64
}

// BuildPage turns positioned glyphs into word tokens and layout text.
// height is the page height in points; when unknown (0) the highest glyph
// top is used instead.
func BuildPage(number int, glyphs []Glyph, width, height float64) *carriers.Page {
	rows := groupRows(glyphs)

	if height <= 0 {
		height = contentTop(glyphs)
	}

	page := &carriers.Page{
		Number: number,
		Width:  width,
		Height: height,
		Words:  []carriers.Word{},
	}

	charWidth := averageCharWidth(glyphs)
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		words := splitWords(r)
		for _, w := range words {
			page.Words = append(page.Words, carriers.Word{
				Text:   w.text,
				X0:     w.x0,
				Top:    height - (w.baseline + w.fontSize),
				Bottom: height - w.baseline,
			})
		}
		lines = append(lines, layoutLine(words, charWidth))
	}
	page.Text = strings.Join(lines, "\n")
	return page
}

// groupRows clusters glyphs into rows from the top of the page down.
// Glyphs inside a row are ordered left to right.
func groupRows(glyphs []Glyph) []row {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows []row
	for _, g := range sorted {
		if n := len(rows); n > 0 && math.Abs(rows[n-1].y-g.Y) <= RowTolerance {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			continue
		}
		rows = append(rows, row{y: g.Y, glyphs: []Glyph{g}})
	}

	for i := range rows {
		sort.SliceStable(rows[i].glyphs, func(a, b int) bool {
			return rows[i].glyphs[a].X < rows[i].glyphs[b].X
		})
	}
	return rows
}

// splitWords breaks a row on whitespace and on gaps wider than
// WordGapFactor times the font size. Combining marks always stay with the
// preceding character. Word text is NFC-normalised.
func splitWords(r row) []positionedWord {
	var (
		words   []positionedWord
		current strings.Builder
		word    positionedWord
		lastEnd float64
		open    bool
	)

	flush := func() {
		if open {
			word.text = norm.NFC.String(current.String())
			words = append(words, word)
		}
		current.Reset()
		open = false
	}

	for _, g := range r.glyphs {
		count := utf8.RuneCountInString(g.S)
		step := 0.0
		if count > 0 {
			step = g.W / float64(count)
		}
		i := 0
		for _, ch := range g.S {
			x := g.X + float64(i)*step
			i++

			if unicode.IsSpace(ch) {
				flush()
				continue
			}
			if unicode.Is(unicode.Mn, ch) && open {
				current.WriteRune(ch)
				continue
			}
			if open && x-lastEnd > WordGapFactor*fontSizeOr(g.FontSize, word.fontSize) {
				flush()
			}
			if !open {
				word = positionedWord{x0: x, baseline: r.y, fontSize: g.FontSize}
				open = true
			}
			if g.FontSize > word.fontSize {
				word.fontSize = g.FontSize
			}
			current.WriteRune(ch)
			lastEnd = x + step
		}
	}
	flush()
	return words
}

// layoutLine places each word at the text column matching its x position
func layoutLine(words []positionedWord, charWidth float64) string {
	var b strings.Builder
	col := 0
	for _, w := range words {
		target := int(w.x0 / charWidth)
		if col > 0 && target <= col {
			target = col + 1
		}
		if target > col {
			b.WriteString(strings.Repeat(" ", target-col))
			col = target
		}
		b.WriteString(w.text)
		col += utf8.RuneCountInString(w.text)
	}
	return b.String()
}

func averageCharWidth(glyphs []Glyph) float64 {
	total, runes := 0.0, 0
	for _, g := range glyphs {
		n := utf8.RuneCountInString(g.S)
		if n == 0 || g.W <= 0 {
			continue
		}
		total += g.W
		runes += n
	}
	if runes == 0 {
		return defaultCharWidth
	}
	return total / float64(runes)
}

func contentTop(glyphs []Glyph) float64 {
	top := 0.0
	for _, g := range glyphs {
		top = math.Max(top, g.Y+g.FontSize)
	}
	return top
}

func fontSizeOr(size, fallback float64) float64 {
	if size > 0 {
		return size
	}
	return fallback
}
