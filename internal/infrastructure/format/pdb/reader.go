// Package pdb reads ATOM/HETATM records of the fixed-column PDB format.  The
// format has no charge categories, so models read here never carry charges.
package pdb

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/chargeview/internal/domain/structure"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

type parser struct {
	line     []byte
	lineNo   int
	idCode   string
	curModel int
	models   map[int][]structure.Atom
	order    []int
}

// Read parses every MODEL of a PDB file.  Files without MODEL records yield a
// single model.
func Read(r io.Reader) ([]*structure.Model, error) {
	p := &parser{models: map[int][]structure.Atom{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.lineNo++
		p.line = sc.Bytes()
		if err := p.parseLine(); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pdb: %w", err)
	}
	if len(p.order) == 0 {
		return nil, fmt.Errorf("pdb: no ATOM or HETATM records")
	}
	out := make([]*structure.Model, 0, len(p.order))
	for _, num := range p.order {
		out = append(out, structure.NewModel(p.idCode, vtypes.FormatPDB, p.models[num]))
	}
	return out, nil
}

// ReadBytes is Read over an in-memory file.
func ReadBytes(data []byte) ([]*structure.Model, error) {
	return Read(bytes.NewReader(data))
}

func (p *parser) parseLine() error {
	var err error
	switch p.cols(1, 6) {
	case "HEADER":
		p.idCode = p.cols(63, 66)
	case "MODEL":
		if p.curModel, err = p.atoi(11, 14); err != nil {
			return p.errorf("bad MODEL serial")
		}
	case "ATOM", "HETATM":
		return p.parseAtom()
	}
	return nil
}

func (p *parser) parseAtom() error {
	var (
		a   structure.Atom
		err error
	)
	if a.ID, err = p.atoi(7, 11); err != nil {
		return p.errorf("bad atom serial")
	}
	a.Name = p.cols(13, 16)
	a.ResidueName = p.cols(18, 20)
	a.ChainID = p.cols(22, 22)
	if a.AuthSeqID, err = p.atoi(23, 26); err != nil {
		return p.errorf("bad residue sequence number")
	}
	a.InsCode = p.cols(27, 27)
	a.HetAtom = p.cols(1, 6) == "HETATM"
	if !a.HetAtom {
		a.ResidueSeqID = a.AuthSeqID
	}

	var x, y, z float64
	if x, err = p.atof(31, 38); err != nil {
		return p.errorf("bad x coordinate")
	}
	if y, err = p.atof(39, 46); err != nil {
		return p.errorf("bad y coordinate")
	}
	if z, err = p.atof(47, 54); err != nil {
		return p.errorf("bad z coordinate")
	}
	a.Position = r3.Vec{X: x, Y: y, Z: z}
	a.BFactor, _ = p.atof(61, 66)

	a.Element = strings.ToUpper(p.cols(77, 78))
	if a.Element == "" {
		a.Element = guessElement(a.Name)
	}

	if _, seen := p.models[p.curModel]; !seen {
		p.order = append(p.order, p.curModel)
	}
	p.models[p.curModel] = append(p.models[p.curModel], a)
	return nil
}

// guessElement takes the first letter of the atom name, which is right for
// the organic elements in old files that leave columns 77-78 blank.
func guessElement(name string) string {
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			return string(r)
		}
	}
	return ""
}

func (p *parser) errorf(msg string) error {
	return fmt.Errorf("pdb: line %d: %s", p.lineNo, msg)
}

func (p *parser) atoi(start, end int) (int, error) {
	return strconv.Atoi(p.cols(start, end))
}

func (p *parser) atof(start, end int) (float64, error) {
	return strconv.ParseFloat(p.cols(start, end), 64)
}

func (p *parser) cols(start, end int) string {
	rs, re := start-1, end
	if rs >= len(p.line) || rs < 0 {
		return ""
	}
	if re > len(p.line) {
		re = len(p.line)
	}
	if re < rs {
		return ""
	}
	return string(bytes.TrimSpace(p.line[rs:re]))
}

//Personal.AI order the ending
