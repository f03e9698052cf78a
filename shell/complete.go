package shell

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Complete returns candidates for the word under the cursor. In the first
// token the candidates are legal verbs; after it, the verb's CompleteFunc
// decides. Each candidate ends in exactly one space and appears once.
//
// A CompleteFunc matches against the whole argument typed so far, so
// multi-word names ("Dirty Cop 1") complete. Its candidates are cut back
// to the part replacing the last word, which is what front ends insert.
func (in *Interpreter) Complete(line string, cursor int) []string {
	if cursor < 0 || cursor > len(line) {
		cursor = len(line)
	}
	head := line[:cursor]
	trimmed := strings.TrimLeft(head, " \t")

	wordStart := strings.LastIndexAny(trimmed, " \t") + 1
	if wordStart == 0 {
		return Normalize(in.CompleteNames(trimmed))
	}

	full := strings.TrimLeft(line, " \t")
	verb, _, _ := in.Parse(full)
	if verb == "" {
		return nil
	}
	cmd, ok := in.lookup(verb)
	if !ok || cmd.Complete == nil {
		return nil
	}
	verbEnd := strings.IndexAny(trimmed, " \t")
	begidx := verbEnd + len(trimmed[verbEnd:]) - len(strings.TrimLeft(trimmed[verbEnd:], " \t"))
	endidx := len(trimmed)
	text := trimmed[begidx:]

	typed := trimmed[begidx:wordStart]
	var out []string
	for _, c := range cmd.Complete(text, full, begidx, endidx) {
		if len(c) < len(typed) || !strings.EqualFold(c[:len(typed)], typed) {
			continue
		}
		out = append(out, c[len(typed):])
	}
	return Normalize(out)
}

// CompleteNames returns legal verbs starting with text.
func (in *Interpreter) CompleteNames(text string) []string {
	var out []string
	for _, n := range in.Names() {
		if strings.HasPrefix(n, text) {
			out = append(out, n)
		}
	}
	return out
}

// Normalize gives every candidate exactly one trailing space and drops
// empties and duplicates, keeping first-seen order.
func Normalize(cands []string) []string {
	seen := make(map[string]bool, len(cands))
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		c = strings.TrimRight(c, " ")
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c+" ")
	}
	return out
}

// FilterPrefix keeps the options starting with text, ignoring case.
func FilterPrefix(options []string, text string) []string {
	var out []string
	lower := strings.ToLower(text)
	for _, o := range options {
		if strings.HasPrefix(strings.ToLower(o), lower) {
			out = append(out, o)
		}
	}
	return out
}

// Columnize lays items out in columns, filling top to bottom, to fit
// displayWidth terminal cells.
func Columnize(items []string, displayWidth int) string {
	if len(items) == 0 {
		return ""
	}
	colWidth := 0
	for _, it := range items {
		colWidth = max(colWidth, runewidth.StringWidth(it))
	}
	colWidth += 2
	cols := max(1, displayWidth/colWidth)
	rows := (len(items) + cols - 1) / cols

	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			i := r + c*rows
			if i >= len(items) {
				break
			}
			b.WriteString(runewidth.FillRight(items[i], colWidth))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// Expand replaces the word ending at cursor with cand. It returns the new
// line and the cursor just past the inserted text.
func Expand(line string, cursor int, cand string) (string, int) {
	if cursor < 0 || cursor > len(line) {
		cursor = len(line)
	}
	start := strings.LastIndexAny(line[:cursor], " \t") + 1
	return line[:start] + cand + line[cursor:], start + len(cand)
}

// CommonPrefix returns the longest prefix every candidate shares.
func CommonPrefix(cands []string) string {
	if len(cands) == 0 {
		return ""
	}
	prefix := cands[0]
	for _, c := range cands[1:] {
		for !strings.HasPrefix(c, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
