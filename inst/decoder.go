package inst

import (
	"strconv"
	"strings"
)

// Decoder turns the logical instruction text at an address into an
// Instruction. A nil Instruction with nil error means the text is not
// an instruction and the address should be skipped.
type Decoder interface {
	Decode(addr int64, text string) (*Instruction, error)
}

// Mnemonic tables driving category and operator classification.
var (
	conditionalJumpOps = map[string]bool{
		"ja": true, "jae": true, "jb": true, "jbe": true, "jc": true,
		"jcxz": true, "jecxz": true, "jrcxz": true, "je": true, "jg": true,
		"jge": true, "jl": true, "jle": true, "jna": true, "jnae": true,
		"jnb": true, "jnbe": true, "jnc": true, "jne": true, "jng": true,
		"jnge": true, "jnl": true, "jnle": true, "jno": true, "jnp": true,
		"jns": true, "jnz": true, "jo": true, "jp": true, "jpe": true,
		"jpo": true, "js": true, "jz": true,
		"loop": true, "loope": true, "loopne": true, "loopnz": true, "loopz": true,
	}
	unconditionalJumpOps = map[string]bool{
		"jmp": true, "ljmp": true,
	}
	callingOps = map[string]bool{
		"call": true, "int": true, "into": true, "syscall": true, "sysenter": true,
	}
	endOfFlowOps = map[string]bool{
		"ret": true, "retn": true, "retf": true, "iret": true, "iretd": true, "hlt": true,
	}
	transferOps = map[string]bool{
		"mov": true, "movzx": true, "movsx": true, "movsb": true, "movsw": true,
		"movsd": true, "lea": true, "push": true, "pop": true, "pusha": true,
		"popa": true, "pushad": true, "popad": true, "pushf": true, "popf": true,
		"xchg": true, "lodsb": true, "lodsw": true, "lodsd": true, "stosb": true,
		"stosw": true, "stosd": true, "xlat": true,
	}
	mathOps = map[string]bool{
		"add": true, "sub": true, "adc": true, "sbb": true, "inc": true,
		"dec": true, "mul": true, "imul": true, "div": true, "idiv": true,
		"neg": true, "not": true, "and": true, "or": true, "xor": true,
		"shl": true, "shr": true, "sal": true, "sar": true, "rol": true,
		"ror": true, "rcl": true, "rcr": true, "shld": true, "shrd": true,
		"cmp": true, "test": true,
	}
)

// Operand kind indexes into OperandTypes.
const (
	operandVoid = iota
	operandImm
	operandReg
	operandMem
	operandSym
	operandStr
	operandMixed
)

// Operator kind indexes into OperatorTypes.
const (
	operatorTrans = iota
	operatorCall
	operatorMath
	operatorOther
)

var registers = map[string]bool{
	"eax": true, "ebx": true, "ecx": true, "edx": true,
	"esi": true, "edi": true, "ebp": true, "esp": true,
	"ax": true, "bx": true, "cx": true, "dx": true,
	"si": true, "di": true, "bp": true, "sp": true,
	"al": true, "ah": true, "bl": true, "bh": true,
	"cl": true, "ch": true, "dl": true, "dh": true,
	"cs": true, "ds": true, "es": true, "fs": true, "gs": true, "ss": true,
}

// Qualifier tokens that precede a branch target in IDA syntax.
var targetQualifiers = map[string]bool{
	"short": true, "near": true, "far": true, "ptr": true, "offset": true, "large": true,
}

// decoderImpl implements the Decoder interface for IDA-style x86 text.
type decoderImpl struct{}

// NewDecoder returns the textual x86 decoder used for IDA listings.
func NewDecoder() Decoder {
	return &decoderImpl{}
}

// Decode classifies one logical instruction text. Unknown mnemonics are
// accepted as Default-category instructions so that data declarations
// interleaved with code keep their addresses in the index.
func (d *decoderImpl) Decode(addr int64, text string) (*Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	mnemonic := strings.ToLower(fields[0])
	if mnemonic[0] < 'a' || mnemonic[0] > 'z' {
		return nil, nil
	}

	ins := New(addr, mnemonic)
	ins.Operands = splitOperands(strings.Join(fields[1:], " "))
	ins.Category = categoryOf(mnemonic)
	ins.OperandKind = operandKindOf(ins.Operands)
	ins.OperatorKind = operatorKindOf(mnemonic, ins.Category)
	return ins, nil
}

// splitOperands splits the operand text on commas at the top level,
// leaving commas inside parentheses or brackets alone.
func splitOperands(text string) []string {
	var operands []string
	current := ""
	depth := 0

	for _, char := range text {
		switch char {
		case '(', '[':
			depth++
			current += string(char)
		case ')', ']':
			depth--
			current += string(char)
		case ',':
			if depth == 0 {
				if current != "" {
					operands = append(operands, strings.TrimSpace(current))
					current = ""
				}
			} else {
				current += string(char)
			}
		default:
			current += string(char)
		}
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		operands = append(operands, trimmed)
	}
	return operands
}

func categoryOf(mnemonic string) Category {
	switch {
	case conditionalJumpOps[mnemonic]:
		return ConditionalJump
	case unconditionalJumpOps[mnemonic]:
		return UnconditionalJump
	case callingOps[mnemonic]:
		return Calling
	case endOfFlowOps[mnemonic]:
		return EndOfFlow
	default:
		return Default
	}
}

func operatorKindOf(mnemonic string, category Category) int {
	switch {
	case category != Default:
		return operatorCall
	case transferOps[mnemonic]:
		return operatorTrans
	case mathOps[mnemonic]:
		return operatorMath
	default:
		return operatorOther
	}
}

// operandKindOf folds the kinds of the individual operands: no operands
// is void, uniform kinds keep their kind, anything else is mixed.
func operandKindOf(operands []string) int {
	if len(operands) == 0 {
		return operandVoid
	}
	kind := classifyOperand(operands[0])
	for _, op := range operands[1:] {
		if classifyOperand(op) != kind {
			return operandMixed
		}
	}
	return kind
}

func classifyOperand(op string) int {
	switch {
	case strings.ContainsAny(op, `'"`):
		return operandStr
	case strings.Contains(op, "["):
		return operandMem
	case registers[strings.ToLower(op)]:
		return operandReg
	default:
		if _, ok := parseLiteral(op); ok {
			return operandImm
		}
		return operandSym
	}
}

// TargetAddr extracts the first resolvable target address from the
// operands. FakeCalleeAddr is returned when the target is a register,
// an indirect slot, or an extern symbol with no address in the listing.
func (i *Instruction) TargetAddr() int64 {
	for _, operand := range i.Operands {
		for _, tok := range strings.Fields(operand) {
			if targetQualifiers[strings.ToLower(tok)] {
				continue
			}
			if addr, ok := parseTarget(tok); ok && addr >= 0 {
				return addr
			}
		}
	}
	return FakeCalleeAddr
}

// parseTarget resolves label tokens such as "loc_401050" or "sub_4010A0"
// as well as plain numeric literals.
func parseTarget(tok string) (int64, bool) {
	for _, prefix := range []string{"loc_", "locret_", "sub_", "def_"} {
		if strings.HasPrefix(tok, prefix) {
			idx := strings.LastIndex(tok, "_")
			v, err := strconv.ParseInt(tok[idx+1:], 16, 64)
			return v, err == nil
		}
	}
	return parseLiteral(tok)
}

// parseLiteral parses numeric literals in the shapes IDA emits: "0x2A",
// "2Ah", plain decimal, and bare hex. Decimal wins over bare hex for
// all-digit tokens, matching how IDA prints small immediates.
func parseLiteral(tok string) (int64, bool) {
	if tok == "" {
		return 0, false
	}
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		v, err := strconv.ParseInt(tok[2:], 16, 64)
		return v, err == nil
	}
	if len(tok) > 1 && (strings.HasSuffix(tok, "h") || strings.HasSuffix(tok, "H")) {
		v, err := strconv.ParseInt(tok[:len(tok)-1], 16, 64)
		return v, err == nil
	}
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return v, true
	}
	v, err := strconv.ParseInt(tok, 16, 64)
	return v, err == nil
}
