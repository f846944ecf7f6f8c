//go:build !nosyntaxhighlight

package gui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	. "modernc.org/tk9.0"
)

func (a *Controller) applySyntaxHighlight(content string) {
	if a.ui.diffDetail == nil || content == "" {
		return
	}
	a.clearSyntaxHighlight()
	style := styleForPalette(a.theme.palette)
	if style == nil {
		return
	}
	for _, span := range codeSpans(content) {
		for _, run := range colorRuns(span, style) {
			tag := a.syntaxTag(run.color)
			a.ui.diffDetail.TagAdd(tag, fmt.Sprintf("%d.%d", span.line, run.from), fmt.Sprintf("%d.%d", span.line, run.to))
		}
	}
}

func (a *Controller) clearSyntaxHighlight() {
	if a.ui.diffDetail == nil {
		return
	}
	for _, tag := range a.state.diff.syntaxTags {
		a.ui.diffDetail.TagRemove(tag, "1.0", END)
	}
}

// syntaxTag returns the text tag painting color, configuring it on first use.
func (a *Controller) syntaxTag(color string) string {
	if tag, ok := a.state.diff.syntaxTags[color]; ok {
		return tag
	}
	if a.state.diff.syntaxTags == nil {
		a.state.diff.syntaxTags = map[string]string{}
	}
	tag := fmt.Sprintf("syntax_%d", len(a.state.diff.syntaxTags))
	a.ui.diffDetail.TagConfigure(tag, Foreground(color))
	a.state.diff.syntaxTags[color] = tag
	return tag
}

// colorRun is a colored character range [from, to) of one text line.
type colorRun struct {
	color    string
	from, to int
}

// colorRuns tokenises span and merges adjacent tokens of the same color.
// Tokens the style leaves uncolored produce no run.
func colorRuns(span codeSpan, style *chroma.Style) []colorRun {
	if span.lexer == nil || style == nil || span.code == "" {
		return nil
	}
	iterator, err := span.lexer.Tokenise(nil, span.code)
	if err != nil {
		return nil
	}
	var runs []colorRun
	col := span.offset
	for _, token := range iterator.Tokens() {
		n := utf8.RuneCountInString(token.Value)
		if n == 0 {
			continue
		}
		color := colorFromEntry(style.Get(token.Type))
		switch {
		case color == "":
		case len(runs) > 0 && runs[len(runs)-1].color == color && runs[len(runs)-1].to == col:
			runs[len(runs)-1].to = col + n
		default:
			runs = append(runs, colorRun{color: color, from: col, to: col + n})
		}
		col += n
	}
	return runs
}

func styleForPalette(p colorPalette) *chroma.Style {
	if p.ChromaStyle == "" {
		return styles.Fallback
	}
	return styles.Get(p.ChromaStyle)
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if !entry.Colour.IsSet() {
		return ""
	}
	return "#" + strings.TrimPrefix(strings.ToLower(entry.Colour.String()), "#")
}

type codeSpan struct {
	lexer  chroma.Lexer
	code   string
	line   int
	offset int
}

// codeSpans finds the diff body lines worth highlighting, with the lexer of
// the file they belong to. Lines before the first file diff are skipped.
func codeSpans(content string) []codeSpan {
	var (
		spans []codeSpan
		lexer chroma.Lexer
	)
	for i, line := range strings.Split(content, "\n") {
		if path, ok := diffPathFromLine(line); ok {
			lexer = lexerForPath(path)
			continue
		}
		if lexer == nil || strings.HasPrefix(line, "@@") {
			continue
		}
		code, offset, ok := diffLineCode(line)
		if !ok || code == "" {
			continue
		}
		spans = append(spans, codeSpan{lexer: lexer, code: code, line: i + 1, offset: offset})
	}
	return spans
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
