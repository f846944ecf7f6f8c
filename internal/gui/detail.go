package gui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gitpilot-go/gitpilot/internal/debounce"
	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"

	. "modernc.org/tk9.0"
)

type diffState struct {
	sections              []fileSection
	files                 []git.FileChange
	syntaxTags            map[string]string
	suppressFileSelection bool
	skipNextSync          bool

	mu         sync.Mutex
	debouncer  *debounce.Debouncer
	pendingSHA string
}

// fileSection is one entry of the file list: the line of the detail text it
// jumps to and the file change it stands for (-1 for the commit header).
type fileSection struct {
	Label string
	Line  int
	File  int
}

// detailDocument lays out a commit detail as the text shown in the detail
// view, with one section per file.
func detailDocument(detail git.CommitDetail) (string, []fileSection) {
	var b strings.Builder
	sections := []fileSection{{Label: "Commit", Line: 1, File: -1}}
	b.WriteString(git.FormatCommitHeader(detail.Commit))
	line := 1 + strings.Count(b.String(), "\n")
	if len(detail.Files) == 0 {
		b.WriteString("\nNo changes.")
		return b.String(), sections
	}
	for i, f := range detail.Files {
		b.WriteString("\n")
		line++
		sections = append(sections, fileSection{
			Label: fileLabel(f, detail.Commit.IsWorkInProgress),
			Line:  line,
			File:  i,
		})
		diff := f.Diff
		if diff == "" {
			diff = fmt.Sprintf("diff --git a/%s b/%s\n", f.Path, f.Path)
		}
		if !strings.HasSuffix(diff, "\n") {
			diff += "\n"
		}
		b.WriteString(diff)
		line += strings.Count(diff, "\n")
	}
	return strings.TrimRight(b.String(), "\n"), sections
}

func fileLabel(f git.FileChange, wip bool) string {
	label := fmt.Sprintf("%s %s", changeLetter(f.ChangeType), f.Path)
	if f.Additions > 0 || f.Deletions > 0 {
		label += fmt.Sprintf(" +%d -%d", f.Additions, f.Deletions)
	}
	if wip && f.Staged {
		label += " (staged)"
	}
	return label
}

func changeLetter(ct git.ChangeType) string {
	switch ct {
	case git.ChangeAdded:
		return "A"
	case git.ChangeDeleted:
		return "D"
	case git.ChangeRenamed:
		return "R"
	case git.ChangeCopied:
		return "C"
	case git.ChangeUnmerged:
		return "U"
	default:
		return "M"
	}
}

func fileSectionIndexForLine(sections []fileSection, line int) int {
	if len(sections) == 0 || line <= 0 {
		return 0
	}
	target := 0
	for i, sec := range sections {
		if line < sec.Line {
			break
		}
		target = i
	}
	return target
}

func diffLineTag(line string) string {
	switch {
	case strings.HasPrefix(line, "diff --git"):
		return "diffHeader"
	case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
		return "diffAdd"
	case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
		return "diffDel"
	default:
		return ""
	}
}

// diffPathFromLine reports whether line starts a file diff and, if so, the
// path it is about.
func diffPathFromLine(line string) (string, bool) {
	const prefix = "diff --git "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	tokens := diffLineTokens(strings.TrimSpace(line[len(prefix):]))
	if len(tokens) < 2 {
		return "", true
	}
	return strings.TrimPrefix(tokens[1], "b/"), true
}

// diffLineTokens splits a diff header, honouring git's quoted paths.
func diffLineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return tokens
		}
		if s[0] != '"' {
			j := strings.IndexAny(s, " \t")
			if j < 0 {
				j = len(s)
			}
			tokens = append(tokens, s[:j])
			s = s[j:]
			continue
		}
		var buf strings.Builder
		i := 1
		for ; i < len(s); i++ {
			ch := s[i]
			if ch == '\\' && i+1 < len(s) {
				i++
				buf.WriteByte(s[i])
				continue
			}
			if ch == '"' {
				i++
				break
			}
			buf.WriteByte(ch)
		}
		tokens = append(tokens, buf.String())
		s = s[i:]
	}
}

// diffLineCode returns the source code of a diff body line without its
// marker, and the column it starts at.
func diffLineCode(line string) (string, int, bool) {
	if line == "" {
		return "", 0, false
	}
	switch line[0] {
	case '+', '-', ' ':
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			return "", 0, false
		}
		return line[1:], 1, true
	default:
		return "", 0, false
	}
}

func (a *Controller) showCommitDetails(idx int) {
	c, _, ok := a.commitAt(strconv.Itoa(idx))
	if !ok {
		a.clearDetailText("Commit index out of range.")
		return
	}
	a.state.selection.Set(c.SHA, idx)
	a.setFileSections(nil, nil)
	a.writeDetailText(git.FormatCommitHeader(c)+"\nLoading diff...", false)
	a.scheduleDiffLoad(c.SHA)
}

func (a *Controller) scheduleDiffLoad(sha string) {
	slog.Debug("scheduleDiffLoad", slog.String("sha", sha))
	deb := func() *debounce.Debouncer {
		a.state.diff.mu.Lock()
		defer a.state.diff.mu.Unlock()
		a.state.diff.pendingSHA = sha
		return debounce.Ensure(&a.state.diff.debouncer, diffDebounceDelay, a.flushDiffDebounce)
	}()
	deb.Trigger()
}

func (a *Controller) flushDiffDebounce() {
	sha := func() string {
		a.state.diff.mu.Lock()
		defer a.state.diff.mu.Unlock()
		sha := a.state.diff.pendingSHA
		a.state.diff.pendingSHA = ""
		return sha
	}()
	if sha == "" {
		return
	}
	go a.populateDiff(a.svc, sha)
}

func (a *Controller) populateDiff(svc *git.Service, sha string) {
	detail, err := svc.CommitDetail(sha)
	PostEvent(func() {
		if a.state.selection.SHA() != sha || svc != a.svc {
			return
		}
		if err != nil {
			slog.Error("commit detail", slog.String("sha", sha), slog.Any("error", err))
			a.clearDetailText(fmt.Sprintf("Unable to compute diff: %v", err))
			return
		}
		text, sections := detailDocument(detail)
		a.writeDetailText(text, len(detail.Files) > 0)
		a.setFileSections(sections, detail.Files)
	}, false)
}

func (a *Controller) cancelPendingDiffLoad() {
	a.state.diff.mu.Lock()
	defer a.state.diff.mu.Unlock()
	if a.state.diff.debouncer != nil {
		a.state.diff.debouncer.Stop()
	}
	a.state.diff.debouncer = nil
	a.state.diff.pendingSHA = ""
}

func (a *Controller) clearDetailText(msg string) {
	a.writeDetailText(msg, false)
	a.setFileSections(nil, nil)
}

func (a *Controller) writeDetailText(content string, highlightDiff bool) {
	if a.ui.diffDetail == nil {
		return
	}
	a.ui.diffDetail.Configure(State(NORMAL))
	a.ui.diffDetail.Delete("1.0", END)
	a.ui.diffDetail.Insert("1.0", content)
	for _, tag := range []string{"diffAdd", "diffDel", "diffHeader"} {
		a.ui.diffDetail.TagRemove(tag, "1.0", END)
	}
	if highlightDiff {
		a.highlightDiffLines(content)
	}
	if a.cfg.syntaxHighlight && highlightDiff {
		a.applySyntaxHighlight(content)
	} else {
		a.clearSyntaxHighlight()
	}
	a.ui.diffDetail.Configure(State("disabled"))
}

func (a *Controller) highlightDiffLines(content string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		tag := diffLineTag(line)
		if tag == "" {
			continue
		}
		lineNo := i + 1
		end := fmt.Sprintf("%d.0", lineNo+1)
		if lineNo == len(lines) {
			end = fmt.Sprintf("%d.end", lineNo)
		}
		a.ui.diffDetail.TagAdd(tag, fmt.Sprintf("%d.0", lineNo), end)
	}
}

func (a *Controller) copyDetailSelection(stripMarkers bool) {
	text, err := tkutil.Eval("%s get sel.first sel.last", a.ui.diffDetail)
	if err != nil || text == "" {
		return
	}
	if stripMarkers {
		text = stripDiffMarkers(text)
	}
	ClipboardClear()
	ClipboardAppend(text)
	if stripMarkers {
		a.setStatus("Copied selection without +/- markers.")
	} else {
		a.setStatus("Copied selection.")
	}
}

func stripDiffMarkers(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if len(line) > 0 && (line[0] == '+' || line[0] == '-') {
			lines[i] = line[1:]
		}
	}
	return strings.Join(lines, "\n")
}

func (a *Controller) setFileSections(sections []fileSection, files []git.FileChange) {
	if len(sections) == 0 {
		sections = []fileSection{{Label: "Commit", Line: 1, File: -1}}
	}
	a.state.diff.sections = sections
	a.state.diff.files = files
	if a.ui.diffFileList == nil {
		return
	}
	a.ui.diffFileList.Delete(0, END)
	for _, sec := range sections {
		a.ui.diffFileList.Insert(END, sec.Label)
	}
	a.ui.diffFileList.SelectionClear(0, END)
	a.ui.diffFileList.Activate(0)
	a.syncFileSelectionToDiff()
}

// selectedFile is the file change under the file list selection.
func (a *Controller) selectedFile() (git.FileChange, bool) {
	if a.ui.diffFileList == nil {
		return git.FileChange{}, false
	}
	sel := a.ui.diffFileList.Curselection()
	if len(sel) == 0 || sel[0] < 0 || sel[0] >= len(a.state.diff.sections) {
		return git.FileChange{}, false
	}
	f := a.state.diff.sections[sel[0]].File
	if f < 0 || f >= len(a.state.diff.files) {
		return git.FileChange{}, false
	}
	return a.state.diff.files[f], true
}

func (a *Controller) onFileSelectionChanged() {
	if a.state.diff.suppressFileSelection || len(a.state.diff.sections) == 0 {
		return
	}
	sel := a.ui.diffFileList.Curselection()
	if len(sel) == 0 || sel[0] < 0 || sel[0] >= len(a.state.diff.sections) {
		return
	}
	a.state.diff.skipNextSync = true
	a.scrollDiffToLine(a.state.diff.sections[sel[0]].Line)
}

func (a *Controller) scrollDiffToLine(line int) {
	if line <= 0 {
		return
	}
	total := a.textLineCount()
	if total <= 1 {
		a.ui.diffDetail.Yviewmoveto(0)
		return
	}
	fraction := float64(line-1) / float64(total-1)
	a.ui.diffDetail.Yviewmoveto(max(0, min(fraction, 1)))
}

func (a *Controller) textLineCount() int {
	line, _, _ := strings.Cut(a.ui.diffDetail.Index(END), ".")
	return max(0, tkutil.Atoi(line)-1)
}

func (a *Controller) syncFileSelectionToDiff() {
	if len(a.state.diff.sections) == 0 || a.state.diff.skipNextSync || a.ui.diffDetail == nil {
		return
	}
	first, _, _ := strings.Cut(a.ui.diffDetail.Index("@0,0"), ".")
	line := tkutil.Atoi(first)
	if line <= 0 {
		return
	}
	a.setFileListSelection(fileSectionIndexForLine(a.state.diff.sections, line))
}

func (a *Controller) setFileListSelection(idx int) {
	if idx < 0 || idx >= len(a.state.diff.sections) {
		return
	}
	current := a.ui.diffFileList.Curselection()
	if len(current) > 0 && current[0] == idx {
		return
	}
	a.state.diff.suppressFileSelection = true
	a.ui.diffFileList.SelectionClear(0, END)
	a.ui.diffFileList.SelectionSet(idx)
	a.ui.diffFileList.Activate(idx)
	a.ui.diffFileList.See(idx)
	PostEvent(func() {
		a.state.diff.suppressFileSelection = false
	}, false)
}

func (a *Controller) onDiffScrolled() {
	if a.state.diff.skipNextSync {
		a.state.diff.skipNextSync = false
		return
	}
	a.syncFileSelectionToDiff()
}
