// Package frontmatter parses the metadata block that prefixes knowledge-base
// documents.
//
// The grammar is intentionally narrow: one flat set of keys whose values are
// scalars, inline lists ("[a, b]") or block lists of "  - item" lines.
// Anything else, such as nested mappings or multi-line scalars, is skipped and
// reported through Result.Skipped instead of failing the parse. A document
// without a leading block simply has no frontmatter; that is never an error.
package frontmatter

import (
	"strings"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

const listItemPrefix = "  - "

// Block locates the frontmatter inside a document.
type Block struct {
	// Raw is the text between the delimiter lines.
	Raw string
	// Start is the byte offset of Raw within the document.
	Start int
	// End is the byte offset just past the closing delimiter line.
	End int
}

// Result holds the output of parsing a document.
type Result struct {
	Metadata Metadata
	Block    Block
	Body     string
	// Skipped lists 1-based document line numbers inside the block that the
	// grammar could not interpret.
	Skipped []int
}

// Split finds the leading frontmatter block. The first line must be the
// delimiter and the block ends at the next delimiter line. Trailing blanks
// and carriage returns on delimiter lines are tolerated.
func Split(content string) (Block, bool) {
	line, next := lineAt(content, 0)
	if !isDelimiter(line) || next < 0 {
		return Block{}, false
	}
	start := next
	for pos := next; pos < len(content); {
		line, nxt := lineAt(content, pos)
		if isDelimiter(line) {
			end := len(content)
			if nxt >= 0 {
				end = nxt
			}
			raw := strings.TrimSuffix(content[start:pos], "\n")
			raw = strings.TrimSuffix(raw, "\r")
			return Block{Raw: raw, Start: start, End: end}, true
		}
		if nxt < 0 {
			break
		}
		pos = nxt
	}
	return Block{}, false
}

// Parse extracts the metadata and body of a document. ok is false when the
// document has no leading block.
func Parse(content string) (res *Result, ok bool) {
	block, ok := Split(content)
	if !ok {
		return nil, false
	}
	meta, skipped := parseBlock(block.Raw)
	return &Result{
		Metadata: meta,
		Block:    block,
		Body:     content[block.End:],
		Skipped:  skipped,
	}, true
}

func parseBlock(raw string) (Metadata, []int) {
	meta := Metadata{}
	var skipped []int
	listKey := ""

	for i, line := range strings.Split(raw, "\n") {
		lineNo := i + 2 // the opening delimiter is line 1
		line = strings.TrimRight(line, " \t\r")

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue

		case strings.HasPrefix(line, listItemPrefix):
			if listKey == "" {
				skipped = append(skipped, lineNo)
				continue
			}
			v := meta[listKey]
			v.list = append(v.list, unquote(strings.TrimSpace(line[len(listItemPrefix):])))
			meta[listKey] = v

		case !startsWithSpace(line) && strings.Contains(line, ":"):
			key, value, _ := strings.Cut(line, ":")
			key = strings.TrimSpace(key)
			value = unquote(strings.TrimSpace(value))
			listKey = ""

			switch {
			case value == "":
				meta[key] = List()
				listKey = key
			case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
				meta[key] = List(splitInline(value[1 : len(value)-1])...)
			default:
				meta[key] = Scalar(value)
			}

		default:
			skipped = append(skipped, lineNo)
		}
	}
	return meta, skipped
}

// ReplaceScalar rewrites every top-level "key:" line inside the frontmatter
// block as `key: "value"`. Bytes outside those lines are preserved. It
// reports whether any line was rewritten.
func ReplaceScalar(content, key, value string) (string, bool) {
	block, ok := Split(content)
	if !ok {
		return content, false
	}

	var b strings.Builder
	b.Grow(len(content) + len(value))
	b.WriteString(content[:block.Start])

	replaced := false
	rest := content[block.Start:block.End]
	for rest != "" {
		line := rest
		nl := ""
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, nl, rest = rest[:i], "\n", rest[i+1:]
		} else {
			rest = ""
		}
		if k, _, found := strings.Cut(line, ":"); found && !startsWithSpace(line) && strings.TrimSpace(k) == key {
			cr := ""
			if strings.HasSuffix(line, "\r") {
				cr = "\r"
			}
			line = key + `: "` + value + `"` + cr
			replaced = true
		}
		b.WriteString(line)
		b.WriteString(nl)
	}
	b.WriteString(content[block.End:])
	return b.String(), replaced
}

// lineAt returns the line starting at pos without its newline, and the offset
// of the following line or -1 when it is the last one.
func lineAt(s string, pos int) (string, int) {
	i := strings.IndexByte(s[pos:], '\n')
	if i < 0 {
		return s[pos:], -1
	}
	return s[pos : pos+i], pos + i + 1
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

func startsWithSpace(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func splitInline(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, unquote(item))
	}
	return out
}

// unquote removes one matched layer of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
