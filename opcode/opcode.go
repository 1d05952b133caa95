// Package opcode holds the declarative 8080/8085 instruction table and the
// byte-0 encoder shared by real per-line synthesis (asm) and the expression
// engine's backtick instruction literal (expr.BacktickEncoder).
package opcode

import (
	"fmt"
	"strings"

	"github.com/hallowmantle/i8080asm/line"
)

// Form names the fixed operand shape a mnemonic takes. The shape determines
// both instruction length and which operands FirstByte needs.
type Form int

const (
	FormImplied     Form = iota // no operands, e.g. nop, hlt, ei
	FormRegReg                  // mov d,s
	FormReg                     // alu r ; inr r ; dcr r
	FormRegImm8                 // mvi r, imm8
	FormRegPair                 // inx/dcx/dad rp
	FormRegPairImm16            // lxi rp, imm16
	FormPushPop                 // push/pop rp (psw family)
	FormStaxLdax                // stax/ldax rp (b or d only)
	FormImm8                    // alu-immediate, in, out: op imm8
	FormAddr16                  // jmp/call/sta/lda/shld/lhld: op addr16
	FormRst                     // rst n (n is a literal 0..7, not memory addressed)
)

// Entry is one mnemonic's declarative description.
type Entry struct {
	Form     Form
	Len      int  // total encoded length in bytes
	ALUCode  byte // 3-bit function code for Form Reg ALU ops; immediate ALU forms take their byte from fixedBytes
	Is8085   bool // 8085-only instruction: rejected unless cpu_mode == 8085
}

var table = buildTable()

// Lookup returns the table entry for a mnemonic (case-insensitive).
func Lookup(mnemonic string) (Entry, bool) {
	e, ok := table[strings.ToLower(mnemonic)]
	return e, ok
}

// IsMnemonic reports whether name is a known opcode mnemonic; this backs
// line.Classifier.IsOpcode.
func IsMnemonic(name string) bool {
	_, ok := table[strings.ToLower(name)]
	return ok
}

// RegisterCode returns the 3-bit register field value.
func RegisterCode(r line.Register) (byte, error) {
	switch r {
	case line.RegB:
		return 0, nil
	case line.RegC:
		return 1, nil
	case line.RegD:
		return 2, nil
	case line.RegE:
		return 3, nil
	case line.RegH:
		return 4, nil
	case line.RegL:
		return 5, nil
	case line.RegM:
		return 6, nil
	case line.RegA:
		return 7, nil
	default:
		return 0, fmt.Errorf("not a register")
	}
}

// RegPairCode returns the 2-bit register-pair field value for the sp-family
// encodings (inx/dcx/dad/lxi).
func RegPairCode(p line.RegPair) (byte, error) {
	switch p {
	case line.PairB:
		return 0, nil
	case line.PairD:
		return 1, nil
	case line.PairH:
		return 2, nil
	case line.PairSP:
		return 3, nil
	default:
		return 0, fmt.Errorf("register pair does not take the sp-family encoding")
	}
}

// PushPopCode returns the 2-bit register-pair field value for the psw-family
// encodings (push/pop), where PSW takes the slot sp occupies elsewhere.
func PushPopCode(p line.RegPair) (byte, error) {
	switch p {
	case line.PairB:
		return 0, nil
	case line.PairD:
		return 1, nil
	case line.PairH:
		return 2, nil
	case line.PairPSW:
		return 3, nil
	default:
		return 0, fmt.Errorf("register pair does not take the psw-family encoding")
	}
}

// EncodeOpcodeByte computes byte 0 of mnemonic's encoding from its register
// and/or register-pair operands, plus vector for the one form (rst) whose
// opcode byte embeds a small constant rather than storing it in a trailing
// immediate byte. Every other form's byte 0 is independent of any immediate
// operand's value, which is what makes it safe to reuse for the backtick
// literal: the caller supplies whatever operands the mnemonic's Form
// requires and leaves the rest nil/zero.
func EncodeOpcodeByte(mnemonic string, regs []line.Register, pairs []line.RegPair, vector *int) (byte, error) {
	e, ok := Lookup(mnemonic)
	if !ok {
		return 0, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	switch e.Form {
	case FormImplied:
		return impliedBytes[strings.ToLower(mnemonic)], nil

	case FormRegReg:
		if len(regs) != 2 {
			return 0, fmt.Errorf("%s requires two register operands", mnemonic)
		}
		d, err := RegisterCode(regs[0])
		if err != nil {
			return 0, err
		}
		s, err := RegisterCode(regs[1])
		if err != nil {
			return 0, err
		}
		return 0x40 | (d << 3) | s, nil

	case FormReg:
		if len(regs) != 1 {
			return 0, fmt.Errorf("%s requires one register operand", mnemonic)
		}
		r, err := RegisterCode(regs[0])
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(mnemonic) {
		case "inr":
			return (r << 3) | 0x04, nil
		case "dcr":
			return (r << 3) | 0x05, nil
		default: // ALU group
			return 0x80 | (e.ALUCode << 3) | r, nil
		}

	case FormRegImm8:
		if len(regs) != 1 {
			return 0, fmt.Errorf("mvi requires one register operand")
		}
		r, err := RegisterCode(regs[0])
		if err != nil {
			return 0, err
		}
		return (r << 3) | 0x06, nil

	case FormRegPair:
		if len(pairs) != 1 {
			return 0, fmt.Errorf("%s requires one register-pair operand", mnemonic)
		}
		rp, err := RegPairCode(pairs[0])
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(mnemonic) {
		case "inx":
			return (rp << 4) | 0x03, nil
		case "dcx":
			return (rp << 4) | 0x0B, nil
		case "dad":
			return (rp << 4) | 0x09, nil
		}
		return 0, fmt.Errorf("unreachable: %s", mnemonic)

	case FormRegPairImm16:
		if len(pairs) != 1 {
			return 0, fmt.Errorf("lxi requires one register-pair operand")
		}
		rp, err := RegPairCode(pairs[0])
		if err != nil {
			return 0, err
		}
		return (rp << 4) | 0x01, nil

	case FormPushPop:
		if len(pairs) != 1 {
			return 0, fmt.Errorf("%s requires one register-pair operand", mnemonic)
		}
		rp, err := PushPopCode(pairs[0])
		if err != nil {
			return 0, err
		}
		if strings.ToLower(mnemonic) == "push" {
			return 0xC0 | (rp << 4) | 0x05, nil
		}
		return 0xC0 | (rp << 4) | 0x01, nil

	case FormStaxLdax:
		if len(pairs) != 1 {
			return 0, fmt.Errorf("%s requires b or d", mnemonic)
		}
		rp, err := RegPairCode(pairs[0])
		if err != nil || rp > 1 {
			return 0, fmt.Errorf("%s only accepts register pair b or d", mnemonic)
		}
		if strings.ToLower(mnemonic) == "stax" {
			return (rp << 4) | 0x02, nil
		}
		return (rp << 4) | 0x0A, nil

	case FormImm8, FormAddr16:
		return fixedBytes[strings.ToLower(mnemonic)], nil

	case FormRst:
		if vector == nil || *vector < 0 || *vector > 7 {
			return 0, fmt.Errorf("rst vector must be a constant in 0..7")
		}
		return 0xC7 | (byte(*vector) << 3), nil
	}
	return 0, fmt.Errorf("unhandled form for %s", mnemonic)
}

var impliedBytes = map[string]byte{
	"nop": 0x00, "hlt": 0x76, "rlc": 0x07, "rrc": 0x0F,
	"ral": 0x17, "rar": 0x1F, "daa": 0x27, "cma": 0x2F,
	"stc": 0x37, "cmc": 0x3F, "rim": 0x20, "sim": 0x30,
	"ret": 0xC9, "xthl": 0xE3, "pchl": 0xE9, "xchg": 0xEB,
	"sphl": 0xF9, "di": 0xF3, "ei": 0xFB,
	"rz": 0xC8, "rnz": 0xC0, "rc": 0xD8, "rnc": 0xD0,
	"rpo": 0xE0, "rpe": 0xE8, "rp": 0xF0, "rm": 0xF8,
	// 8085-only, implied-operand forms.
	"dsub": 0x08, "arhl": 0x10, "rdel": 0x18,
	"rstv": 0xCB, "shlx": 0xD9, "lhlx": 0xED,
}

// fixedBytes covers mnemonics whose opcode byte never varies with operand
// registers (direct-address, immediate-ALU-adjacent, and conditional
// jump/call forms, whose condition is baked into the mnemonic name itself).
var fixedBytes = map[string]byte{
	"jmp": 0xC3, "call": 0xCD,
	"jz": 0xCA, "jnz": 0xC2, "jc": 0xDA, "jnc": 0xD2,
	"jpo": 0xE2, "jpe": 0xEA, "jp": 0xF2, "jm": 0xFA,
	"cz": 0xCC, "cnz": 0xC4, "cc": 0xDC, "cnc": 0xD4,
	"cpo": 0xE4, "cpe": 0xEC, "cp": 0xF4, "cm": 0xFC,
	"sta": 0x32, "lda": 0x3A, "shld": 0x22, "lhld": 0x2A,
	"in": 0xDB, "out": 0xD3,
	"adi": 0xC6, "aci": 0xCE, "sui": 0xD6, "sbi": 0xDE,
	"ani": 0xE6, "xri": 0xEE, "ori": 0xF6, "cpi": 0xFE,
	// 8085-only.
	"ldhi": 0x28, "ldsi": 0x38, // FormImm8 (8-bit immediate)
	"jnk": 0xDD, "jk": 0xFD, // FormAddr16 (16-bit immediate)
}

func aluCode(name string) byte {
	switch name {
	case "add":
		return 0
	case "adc":
		return 1
	case "sub":
		return 2
	case "sbb":
		return 3
	case "ana":
		return 4
	case "xra":
		return 5
	case "ora":
		return 6
	case "cmp":
		return 7
	}
	return 0
}

func buildTable() map[string]Entry {
	t := make(map[string]Entry)
	t["mov"] = Entry{Form: FormRegReg, Len: 1}
	for _, m := range []string{"add", "adc", "sub", "sbb", "ana", "xra", "ora", "cmp"} {
		t[m] = Entry{Form: FormReg, Len: 1, ALUCode: aluCode(m)}
	}
	t["inr"] = Entry{Form: FormReg, Len: 1}
	t["dcr"] = Entry{Form: FormReg, Len: 1}
	t["mvi"] = Entry{Form: FormRegImm8, Len: 2}
	for _, m := range []string{"inx", "dcx", "dad"} {
		t[m] = Entry{Form: FormRegPair, Len: 1}
	}
	t["lxi"] = Entry{Form: FormRegPairImm16, Len: 3}
	t["push"] = Entry{Form: FormPushPop, Len: 1}
	t["pop"] = Entry{Form: FormPushPop, Len: 1}
	t["stax"] = Entry{Form: FormStaxLdax, Len: 1}
	t["ldax"] = Entry{Form: FormStaxLdax, Len: 1}

	for _, m := range []string{"adi", "aci", "sui", "sbi", "ani", "xri", "ori", "cpi"} {
		t[m] = Entry{Form: FormImm8, Len: 2}
	}
	t["in"] = Entry{Form: FormImm8, Len: 2}
	t["out"] = Entry{Form: FormImm8, Len: 2}

	for _, m := range []string{
		"jmp", "jz", "jnz", "jc", "jnc", "jpo", "jpe", "jp", "jm",
		"call", "cz", "cnz", "cc", "cnc", "cpo", "cpe", "cp", "cm",
		"sta", "lda", "shld", "lhld",
	} {
		t[m] = Entry{Form: FormAddr16, Len: 3}
	}

	t["rst"] = Entry{Form: FormRst, Len: 1}

	for _, m := range []string{
		"nop", "hlt", "rlc", "rrc", "ral", "rar", "daa", "cma", "stc", "cmc",
		"ret", "rz", "rnz", "rc", "rnc", "rpo", "rpe", "rp", "rm",
		"xthl", "pchl", "xchg", "sphl", "di", "ei",
	} {
		t[m] = Entry{Form: FormImplied, Len: 1}
	}
	t["rim"] = Entry{Form: FormImplied, Len: 1, Is8085: true}
	t["sim"] = Entry{Form: FormImplied, Len: 1, Is8085: true}
	for _, m := range []string{"dsub", "arhl", "rdel", "rstv", "shlx", "lhlx"} {
		t[m] = Entry{Form: FormImplied, Len: 1, Is8085: true}
	}
	for _, m := range []string{"ldhi", "ldsi"} {
		t[m] = Entry{Form: FormImm8, Len: 2, Is8085: true}
	}
	for _, m := range []string{"jnk", "jk"} {
		t[m] = Entry{Form: FormAddr16, Len: 3, Is8085: true}
	}

	return t
}
