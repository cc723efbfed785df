// Package ida provides the implementation of the asmparser interfaces for IDA Pro listings.
package ida

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/asmlab/acfg/asmparser"
	"github.com/asmlab/acfg/logging"
	"github.com/asmlab/acfg/profile"
)

var (
	// Byte-column tokens look like "55", "8B", "??", sometimes "6A+".
	byteTokenRegex = regexp.MustCompile(`^[A-F0-9?][A-F0-9?]\+?$`)
	// Pointer equates such as "var_4 = dword ptr -4".
	ptrEquateRegex = regexp.MustCompile(`.+=.+ ptr .+`)
)

// parserImpl implements the asmparser.Parser interface.
type parserImpl struct {
	profile *profile.Profile
	log     *logging.Logger
}

// NewParser returns a new parser for IDA Pro .asm listings. The profile
// decides which segment prefixes are treated as code.
func NewParser(prof *profile.Profile) asmparser.Parser {
	return &parserImpl{profile: prof, log: logging.New()}
}

// Parse reads a listing and normalizes it into a unique-addressed Program.
// Every line whose segment label matches a code-segment prefix contributes
// its byte tokens and instruction tail to the entry at its address; lines
// sharing an address are folded into one logical instruction afterwards.
func (p *parserImpl) Parse(path string) (*asmparser.Program, error) {
	fpath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving absolute filepath: %w", err)
	}

	codefile, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		_ = codefile.Close()
	}()

	program := asmparser.NewProgram()
	groups := make(map[int64][]string)
	var order []int64

	scanner := bufio.NewScanner(codefile)
	// Data declaration lines can be far longer than the default limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		addrText, ok := p.addrInCodeSegment(fields[0])
		if !ok {
			// Code segments are not always at the head of the
			// listing, so keep scanning instead of stopping.
			p.log.Debug("line outside code segment", "line", lineNum)
			continue
		}
		addr, err := strconv.ParseInt(addrText, 16, 64)
		if err != nil {
			p.log.Warn("skipping line with unparseable address", "line", lineNum, "address", addrText)
			continue
		}

		rest := fields[1:]
		next := 0
		for next < len(rest) && byteTokenRegex.MatchString(rest[next]) {
			program.AppendBytes(addr, rest[next])
			next++
		}
		end := indexOfComment(rest)
		if next >= end {
			p.log.Debug("no instruction text", "line", lineNum)
			continue
		}

		tail := strings.Join(rest[next:end], " ")
		if _, seen := groups[addr]; !seen {
			order = append(order, addr)
		}
		groups[addr] = append(groups[addr], tail)
		program.AppendRawLine(addr, tail)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	for _, addr := range order {
		program.SetText(addr, p.aggregate(addr, groups[addr]))
	}
	return program, nil
}

// addrInCodeSegment extracts the address text from a segment label such
// as ".text:00401000". The second return is false when the label does
// not start with any code-segment prefix.
func (p *parserImpl) addrInCodeSegment(seg string) (string, bool) {
	for _, prefix := range p.profile.CodeSegments {
		if strings.HasPrefix(seg, prefix) {
			if idx := strings.LastIndex(seg, ":"); idx != -1 {
				return seg[idx+1:], true
			}
			if len(seg) > 8 {
				return seg[len(seg)-8:], true
			}
			return seg, true
		}
	}
	return "", false
}

// indexOfComment returns the index of the first token carrying a ';'
// marker, or len(fields) when the line has no comment.
func indexOfComment(fields []string) int {
	for i, f := range fields {
		if strings.Contains(f, ";") {
			return i
		}
	}
	return len(fields)
}

// isHeaderInfo reports whether any line of the group is segment header
// noise rather than an instruction.
func isHeaderInfo(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, "_text segment") || strings.Contains(line, ".mmx") {
			return true
		}
	}
	return false
}

// isDataDeclare reports whether the line is a data directive.
func isDataDeclare(line string) bool {
	for _, d := range []string{"dw", "dd", "db", "dt"} {
		if strings.HasPrefix(line, d+" ") || strings.Contains(line, " "+d+" ") {
			return true
		}
	}
	return strings.HasPrefix(line, "unicode ")
}

// aggregate folds every listing line recorded at one address into a
// single logical instruction text. Declarative lines are dropped, data
// declarations and equates collect into one fragment, and a lone
// remaining candidate absorbs that fragment.
func (p *parserImpl) aggregate(addr int64, lines []string) string {
	if isHeaderInfo(lines) {
		// The last line at a header address is the one that
		// carries code when packers overlap the two.
		return lines[len(lines)-1]
	}

	var valid []string
	dataDeclare := ""
	for _, line := range lines {
		switch {
		case strings.Contains(line, "proc near"), strings.Contains(line, "proc far"):
		case strings.Contains(line, "public"):
		case strings.Contains(line, "assume"):
		case strings.Contains(line, "endp"), strings.Contains(line, "ends"):
		case strings.Contains(line, " = "), ptrEquateRegex.MatchString(line):
			dataDeclare += line + " "
		case isDataDeclare(line):
			dataDeclare += line + " "
		case strings.HasSuffix(line, ":"):
		default:
			valid = append(valid, line)
		}
	}

	switch {
	case len(valid) == 1:
		return strings.TrimRight(valid[0]+" "+dataDeclare, " ")
	case strings.TrimRight(dataDeclare, " ") != "":
		return strings.TrimRight(dataDeclare, " ")
	default:
		if len(valid) > 1 {
			p.log.Warn("failed aggregating lines into one instruction",
				"address", fmt.Sprintf("%x", addr), "lines", len(lines))
		}
		text := ""
		for _, line := range valid {
			text += strings.TrimRight(line, "\n\\") + " "
		}
		return strings.TrimRight(text, " ")
	}
}
