package inst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	decoder := NewDecoder()

	ins, err := decoder.Decode(0x401000, "mov ebp, esp")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	assert.Equal(t, ins.Address, int64(0x401000))
	assert.Equal(t, ins.Size, int64(2))
	assert.Equal(t, ins.Mnemonic, "mov")
	assert.Equal(t, ins.Operands, []string{"ebp", "esp"})
	assert.Equal(t, ins.Category, Default)
	assert.Equal(t, ins.OperandKind, operandReg)
	assert.Equal(t, ins.OperatorKind, operatorTrans)
	assert.Equal(t, ins.FallThrough, true)
	assert.Nil(t, ins.BranchTo)
}

func TestDecodeRejects(t *testing.T) {
	decoder := NewDecoder()

	for _, text := range []string{"", "   ", "_text segment para public", "123 not code"} {
		ins, err := decoder.Decode(0x401000, text)
		assert.NoError(t, err)
		assert.Nil(t, ins, "expected %q to be rejected", text)
	}
}

func TestDecodeCategories(t *testing.T) {
	decoder := NewDecoder()

	cases := []struct {
		text     string
		category Category
		operator int
	}{
		{"call sub_401000", Calling, operatorCall},
		{"int 21h", Calling, operatorCall},
		{"jz short loc_401050", ConditionalJump, operatorCall},
		{"loop loc_401010", ConditionalJump, operatorCall},
		{"jmp eax", UnconditionalJump, operatorCall},
		{"retn", EndOfFlow, operatorCall},
		{"hlt", EndOfFlow, operatorCall},
		{"push ebp", Default, operatorTrans},
		{"xor eax, eax", Default, operatorMath},
		{"cpuid", Default, operatorOther},
	}
	for _, tc := range cases {
		ins, err := decoder.Decode(0x401000, tc.text)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", tc.text, err)
		}
		assert.Equal(t, ins.Category, tc.category, tc.text)
		assert.Equal(t, ins.OperatorKind, tc.operator, tc.text)
	}
}

func TestDecodeOperandKinds(t *testing.T) {
	decoder := NewDecoder()

	cases := []struct {
		text string
		kind int
	}{
		{"retn", operandVoid},
		{"push 42", operandImm},
		{"push 0FFFFFFFFh", operandImm},
		{"inc eax", operandReg},
		{"push dword ptr [ebp+8]", operandMem},
		{"call CloseHandle", operandSym},
		{"push 'hello'", operandStr},
		{"mov eax, [esi]", operandMixed},
	}
	for _, tc := range cases {
		ins, err := decoder.Decode(0x401000, tc.text)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", tc.text, err)
		}
		assert.Equal(t, ins.OperandKind, tc.kind, tc.text)
	}
}

func TestSplitOperands(t *testing.T) {
	assert.Equal(t, splitOperands("eax, dword ptr [ebp+8]"), []string{"eax", "dword ptr [ebp+8]"})
	assert.Equal(t, splitOperands("(a, b), ecx"), []string{"(a, b)", "ecx"})
	assert.Equal(t, splitOperands(""), []string(nil))
}

func TestTargetAddr(t *testing.T) {
	decoder := NewDecoder()

	cases := []struct {
		text string
		addr int64
	}{
		{"jz short loc_401050", 0x401050},
		{"call sub_4010A0", 0x4010A0},
		{"jz locret_40100C", 0x40100C},
		{"jmp def_405000", 0x405000},
		{"int 21h", 0x21},
		{"int 3", 3},
		{"jmp 0x405000", 0x405000},
		{"call 405000h", 0x405000},
		{"jmp eax", FakeCalleeAddr},
		{"call ds:WriteFile", FakeCalleeAddr},
		{"call dword ptr [eax+0Ch]", FakeCalleeAddr},
	}
	for _, tc := range cases {
		ins, err := decoder.Decode(0x401000, tc.text)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", tc.text, err)
		}
		assert.Equal(t, ins.TargetAddr(), tc.addr, tc.text)
	}
}

func TestFeatureEncodings(t *testing.T) {
	decoder := NewDecoder()

	ins, err := decoder.Decode(0x401000, "mov eax, [ebp-4]")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	operand := ins.OperandFeatures()
	assert.Equal(t, len(operand), len(OperandTypes))
	assert.Equal(t, operand[operandMixed], 1.0)

	operator := ins.OperatorFeatures()
	assert.Equal(t, len(operator), len(OperatorTypes))
	assert.Equal(t, operator[operatorTrans], 1.0)

	// Operand text "eax [ebp-4]" carries '[', ']' and '-'.
	special := ins.SpecialCharFeatures()
	assert.Equal(t, special, []float64{0, 1, 1, 0, 0, 0, 1})
}

func TestSetBranchTo(t *testing.T) {
	ins := New(0x401000, "jmp")
	assert.Nil(t, ins.BranchTo)
	ins.SetBranchTo(0x402000)
	if assert.NotNil(t, ins.BranchTo) {
		assert.Equal(t, *ins.BranchTo, int64(0x402000))
	}
}
