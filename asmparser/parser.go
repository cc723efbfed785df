package asmparser

import (
	"fmt"
	"io"
	"slices"
)

// Parser holds interface for parsing disassembly listings
type Parser interface {
	Parse(path string) (*Program, error)
}

// Program is a normalized listing: one logical instruction text per
// distinct address, plus the raw byte tokens and original line tails
// that produced it. Lines sharing an address always merge into one
// entry, whether or not they were adjacent in the listing.
type Program struct {
	entries map[int64]*entry
}

type entry struct {
	text     string
	bytes    []string
	rawLines []string
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{entries: make(map[int64]*entry)}
}

func (p *Program) entryAt(addr int64) *entry {
	e, ok := p.entries[addr]
	if !ok {
		e = &entry{}
		p.entries[addr] = e
	}
	return e
}

// SetText records the logical instruction text for addr.
func (p *Program) SetText(addr int64, text string) {
	p.entryAt(addr).text = text
}

// AppendBytes appends raw byte tokens for addr in listing order.
func (p *Program) AppendBytes(addr int64, tokens ...string) {
	e := p.entryAt(addr)
	e.bytes = append(e.bytes, tokens...)
}

// AppendRawLine appends an original instruction tail for addr.
func (p *Program) AppendRawLine(addr int64, line string) {
	e := p.entryAt(addr)
	e.rawLines = append(e.rawLines, line)
}

// Text returns the logical instruction text at addr, or "" when the
// address is unknown.
func (p *Program) Text(addr int64) string {
	if e, ok := p.entries[addr]; ok {
		return e.text
	}
	return ""
}

// Bytes returns the raw byte tokens recorded at addr in listing order.
func (p *Program) Bytes(addr int64) []string {
	if e, ok := p.entries[addr]; ok {
		return e.bytes
	}
	return nil
}

// RawLines returns the original instruction tails recorded at addr.
func (p *Program) RawLines(addr int64) []string {
	if e, ok := p.entries[addr]; ok {
		return e.rawLines
	}
	return nil
}

// Addrs returns every recorded address in ascending order.
func (p *Program) Addrs() []int64 {
	addrs := make([]int64, 0, len(p.entries))
	for addr := range p.entries {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// Len returns the number of distinct addresses.
func (p *Program) Len() int {
	return len(p.entries)
}

// WriteTo dumps the program as "addr text" lines in address order.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, addr := range p.Addrs() {
		n, err := fmt.Fprintf(w, "%x %s\n", addr, p.entries[addr].text)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
