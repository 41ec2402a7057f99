package mmcif

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ChargeSet is one method's charges in atom order; atom ids are 1-based
// positions in Charges.
type ChargeSet struct {
	Method     string // "method/parameters"
	Charges    []float64
	MethodType string // defaults to "empirical"
}

// WriteChargeCategories writes the metadata and charge loops for sets.  Type
// ids are assigned 1..N in slice order.
func WriteChargeCategories(w io.Writer, sets []ChargeSet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "loop_\n_%s.id\n_%s.type\n_%s.method\n", CategoryChargesMeta, CategoryChargesMeta, CategoryChargesMeta)
	for i, s := range sets {
		typ := s.MethodType
		if typ == "" {
			typ = "empirical"
		}
		fmt.Fprintf(bw, "%d %s %s\n", i+1, quote(typ), quote(s.Method))
	}
	fmt.Fprintf(bw, "#\nloop_\n_%s.type_id\n_%s.atom_id\n_%s.charge\n", CategoryCharges, CategoryCharges, CategoryCharges)
	for i, s := range sets {
		for j, c := range s.Charges {
			fmt.Fprintf(bw, "%d %d %.4f\n", i+1, j+1, c)
		}
	}
	fmt.Fprint(bw, "#\n")
	return bw.Flush()
}

func quote(s string) string {
	if strings.ContainsRune(s, '\'') {
		return `"` + s + `"`
	}
	return "'" + s + "'"
}

// ReplaceChargeCategories returns doc with any existing charge loops removed
// and fresh ones appended for sets.
func ReplaceChargeCategories(doc []byte, sets []ChargeSet) ([]byte, error) {
	var out bytes.Buffer
	lines := strings.Split(string(doc), "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "loop_" && i+1 < len(lines) && isChargeTag(lines[i+1]) {
			i++
			for i < len(lines) && !endsChargeLoop(lines[i]) {
				i++
			}
			if i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "#") {
				continue
			}
			i--
			continue
		}
		if isChargeTag(line) {
			continue
		}
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
		out.WriteByte('\n')
	}
	if err := WriteChargeCategories(&out, sets); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func isChargeTag(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "_"+CategoryCharges+".") || strings.HasPrefix(l, "_"+CategoryChargesMeta+".")
}

// endsChargeLoop reports whether line is outside the loop currently being
// skipped: a comment, a new loop or data block, or a tag of another category.
func endsChargeLoop(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	switch {
	case strings.HasPrefix(l, "#"), l == "loop_", strings.HasPrefix(l, "data_"):
		return true
	case strings.HasPrefix(l, "_"):
		return !isChargeTag(line)
	}
	return false
}

//Personal.AI order the ending
