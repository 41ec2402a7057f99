// Package mmcif reads the subset of PDBx/mmCIF needed by the scene engine:
// the _atom_site hierarchy and the partial-charge categories
// _sb_ncbr_partial_atomic_charges_meta / _sb_ncbr_partial_atomic_charges.
// It also writes the two charge categories back into an existing file.
package mmcif

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Category names used by the charge extension.
const (
	CategoryAtomSite    = "atom_site"
	CategoryChargesMeta = "sb_ncbr_partial_atomic_charges_meta"
	CategoryCharges     = "sb_ncbr_partial_atomic_charges"
	CategoryQAMetric    = "ma_qa_metric"
)

// ─────────────────────────────────────────────────────────────────────────────
// Document model
// ─────────────────────────────────────────────────────────────────────────────

// Category is a table of values.  Single-item categories have one row.
type Category struct {
	Name   string
	Fields []string
	Rows   [][]string

	fieldIndex map[string]int
}

func newCategory(name string) *Category {
	return &Category{Name: name, fieldIndex: map[string]int{}}
}

func (c *Category) addField(f string) int {
	if i, ok := c.fieldIndex[f]; ok {
		return i
	}
	c.fieldIndex[f] = len(c.Fields)
	c.Fields = append(c.Fields, f)
	return len(c.Fields) - 1
}

// RowCount returns the number of rows.
func (c *Category) RowCount() int {
	if c == nil {
		return 0
	}
	return len(c.Rows)
}

// FieldIndex returns the column index of field, or -1.
func (c *Category) FieldIndex(field string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.fieldIndex[field]; ok {
		return i
	}
	return -1
}

// Value returns the raw value at (row, field) and whether it is present and
// not one of the null markers "." and "?".
func (c *Category) Value(row int, field string) (string, bool) {
	i := c.FieldIndex(field)
	if i < 0 || row < 0 || row >= len(c.Rows) || i >= len(c.Rows[row]) {
		return "", false
	}
	v := c.Rows[row][i]
	if v == "." || v == "?" {
		return "", false
	}
	return v, true
}

// Block is one data_ block.
type Block struct {
	Name       string
	Categories map[string]*Category
	order      []string
}

// Category returns the named category or nil.
func (b *Block) Category(name string) *Category {
	return b.Categories[name]
}

// CategoryNames returns category names in file order.
func (b *Block) CategoryNames() []string {
	return append([]string(nil), b.order...)
}

func (b *Block) category(name string) *Category {
	c, ok := b.Categories[name]
	if !ok {
		c = newCategory(name)
		b.Categories[name] = c
		b.order = append(b.order, name)
	}
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Tokenizer
// ─────────────────────────────────────────────────────────────────────────────

type token struct {
	value  string
	quoted bool
	line   int
}

type tokenizer struct {
	sc     *bufio.Scanner
	line   int
	queue  []token
	err    error
	inText bool
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &tokenizer{sc: sc}
}

// next returns the next token, or ok=false at EOF.
func (t *tokenizer) next() (token, bool) {
	for len(t.queue) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				t.err = err
			}
			return token{}, false
		}
		t.line++
		line := t.sc.Text()
		if strings.HasPrefix(line, ";") {
			t.readTextField(line)
			continue
		}
		t.splitLine(line)
	}
	tok := t.queue[0]
	t.queue = t.queue[1:]
	return tok, true
}

func (t *tokenizer) readTextField(first string) {
	start := t.line
	var sb strings.Builder
	sb.WriteString(first[1:])
	for t.sc.Scan() {
		t.line++
		line := t.sc.Text()
		if strings.HasPrefix(line, ";") {
			t.queue = append(t.queue, token{value: strings.TrimSpace(sb.String()), quoted: true, line: start})
			return
		}
		sb.WriteByte('\n')
		sb.WriteString(line)
	}
	t.err = fmt.Errorf("mmcif: unterminated text field starting at line %d", start)
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' }

func (t *tokenizer) splitLine(line string) {
	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			return
		}
		switch c := line[i]; c {
		case '#':
			return
		case '\'', '"':
			// a quote closes only when followed by whitespace or end of line
			j := i + 1
			for j < len(line) && !(line[j] == c && (j+1 == len(line) || isSpace(line[j+1]))) {
				j++
			}
			if j >= len(line) {
				t.queue = append(t.queue, token{value: line[i+1:], quoted: true, line: t.line})
				return
			}
			t.queue = append(t.queue, token{value: line[i+1 : j], quoted: true, line: t.line})
			i = j + 1
		default:
			j := i
			for j < len(line) && !isSpace(line[j]) {
				j++
			}
			t.queue = append(t.queue, token{value: line[i:j], line: t.line})
			i = j
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

func splitTag(tag string) (category, field string, err error) {
	name := strings.TrimPrefix(tag, "_")
	dot := strings.IndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", fmt.Errorf("mmcif: malformed tag %q", tag)
	}
	return strings.ToLower(name[:dot]), strings.ToLower(name[dot+1:]), nil
}

func isKeyword(tok token) bool {
	if tok.quoted {
		return false
	}
	v := strings.ToLower(tok.value)
	return strings.HasPrefix(v, "_") || v == "loop_" || strings.HasPrefix(v, "data_") ||
		strings.HasPrefix(v, "save_") || v == "global_" || v == "stop_"
}

// Parse reads every data block of an mmCIF document.
func Parse(r io.Reader) ([]*Block, error) {
	t := newTokenizer(r)
	var (
		blocks  []*Block
		current *Block
		pending *token
	)
	nextTok := func() (token, bool) {
		if pending != nil {
			tok := *pending
			pending = nil
			return tok, true
		}
		return t.next()
	}

	for {
		tok, ok := nextTok()
		if !ok {
			break
		}
		lower := strings.ToLower(tok.value)
		switch {
		case !tok.quoted && strings.HasPrefix(lower, "data_"):
			current = &Block{Name: tok.value[len("data_"):], Categories: map[string]*Category{}}
			blocks = append(blocks, current)

		case !tok.quoted && (strings.HasPrefix(lower, "save_") || lower == "global_" || lower == "stop_"):
			// save frames and STAR globals are not used by mmCIF data files

		case !tok.quoted && lower == "loop_":
			if current == nil {
				return nil, fmt.Errorf("mmcif: line %d: loop_ outside of a data block", tok.line)
			}
			var cat *Category
			var columns int
			for {
				tag, ok := nextTok()
				if !ok {
					break
				}
				if tag.quoted || !strings.HasPrefix(tag.value, "_") {
					p := tag
					pending = &p
					break
				}
				name, field, err := splitTag(tag.value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", tag.line, err)
				}
				if cat == nil {
					cat = current.category(name)
				} else if cat.Name != name {
					return nil, fmt.Errorf("mmcif: line %d: loop mixes categories %q and %q", tag.line, cat.Name, name)
				}
				cat.addField(field)
				columns++
			}
			if cat == nil {
				return nil, fmt.Errorf("mmcif: line %d: loop_ without tags", tok.line)
			}
			var row []string
			for {
				val, ok := nextTok()
				if !ok {
					break
				}
				if isKeyword(val) {
					p := val
					pending = &p
					break
				}
				row = append(row, val.value)
				if len(row) == columns {
					cat.Rows = append(cat.Rows, row)
					row = nil
				}
			}
			if len(row) != 0 {
				return nil, fmt.Errorf("mmcif: category %q: %d trailing values do not fill a row of %d columns", cat.Name, len(row), columns)
			}

		case !tok.quoted && strings.HasPrefix(tok.value, "_"):
			if current == nil {
				return nil, fmt.Errorf("mmcif: line %d: item outside of a data block", tok.line)
			}
			name, field, err := splitTag(tok.value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", tok.line, err)
			}
			val, ok := nextTok()
			if !ok {
				return nil, fmt.Errorf("mmcif: line %d: missing value for %s", tok.line, tok.value)
			}
			cat := current.category(name)
			i := cat.addField(field)
			if len(cat.Rows) == 0 {
				cat.Rows = append(cat.Rows, nil)
			}
			for len(cat.Rows[0]) <= i {
				cat.Rows[0] = append(cat.Rows[0], "?")
			}
			cat.Rows[0][i] = val.value

		default:
			return nil, fmt.Errorf("mmcif: line %d: unexpected value %q", tok.line, tok.value)
		}
	}
	if t.err != nil {
		return nil, t.err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("mmcif: no data block found")
	}
	return blocks, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) ([]*Block, error) {
	return Parse(bytes.NewReader(data))
}

//Personal.AI order the ending
