//go:build amd64

package hook

import (
	"encoding/binary"
	"fmt"
)

const (
	// jumpSize is the footprint of the absolute jump written at the target:
	// FF 25 00 00 00 00 (jmp [rip+0]) followed by the 8-byte destination.
	jumpSize = 14

	nopOpcode = 0x90

	// prologueScanWindow bounds how many bytes of the target we read while
	// walking instructions. Generous: the longest x86-64 instruction is 15
	// bytes and we need at most jumpSize-1 extra.
	prologueScanWindow = jumpSize + 15
)

// jumpTo encodes an absolute, register-free jump to dst.
func jumpTo(dst uintptr) []byte {
	code := make([]byte, jumpSize)
	code[0] = 0xFF
	code[1] = 0x25
	binary.LittleEndian.PutUint64(code[6:], uint64(dst))
	return code
}

// relocatablePrefix walks whole instructions from the start of code until at
// least need bytes are covered, verifying each instruction can be copied to
// a different address unchanged. It returns the byte count of that prefix.
//
// The walker understands the instruction mix compilers emit in function
// prologues. Anything IP-relative (call/jmp/jcc rel, RIP-addressed operands)
// or unrecognized fails with ErrNotRelocatable — guessing a length here
// would corrupt the trampoline.
func relocatablePrefix(code []byte, need int) (int, error) {
	off := 0
	for off < need {
		n, err := relocatableInsnLen(code[off:])
		if err != nil {
			return 0, fmt.Errorf("%w: at +%d: %v", ErrNotRelocatable, off, err)
		}
		off += n
	}
	if off > len(code) {
		return 0, fmt.Errorf("%w: prologue walk overran read window", ErrNotRelocatable)
	}
	return off, nil
}

// relocatableInsnLen decodes the length of the instruction at code[0],
// rejecting position-dependent encodings.
func relocatableInsnLen(code []byte) (int, error) {
	if len(code) == 0 {
		return 0, fmt.Errorf("empty")
	}

	i := 0
	// Legacy operand-size prefix and REX prefixes.
	for i < len(code) && code[i] == 0x66 {
		i++
	}
	if i < len(code) && code[i] >= 0x40 && code[i] <= 0x4F {
		i++
	}
	if i >= len(code) {
		return 0, fmt.Errorf("truncated")
	}
	rexW := i > 0 && code[i-1] >= 0x48 && code[i-1] <= 0x4F

	op := code[i]
	i++
	switch {
	case op >= 0x50 && op <= 0x5F: // push/pop r64
		return i, nil
	case op == 0x90 || op == 0xC3 || op == 0xCC: // nop, ret, int3
		return i, nil
	case op >= 0xB8 && op <= 0xBF: // mov r, imm
		if rexW {
			return i + 8, nil
		}
		return i + 4, nil
	case op == 0x6A: // push imm8
		return i + 1, nil
	case op == 0x68: // push imm32
		return i + 4, nil
	case op == 0x88 || op == 0x89 || op == 0x8A || op == 0x8B, // mov rm
		op == 0x8D,               // lea
		op == 0x01 || op == 0x03, // add
		op == 0x29 || op == 0x2B, // sub
		op == 0x31 || op == 0x33, // xor
		op == 0x39 || op == 0x3B, // cmp
		op == 0x85 || op == 0x84, // test
		op == 0x87:               // xchg
		return modRMLen(code, i, 0)
	case op == 0x83: // group1 rm, imm8
		return modRMLen(code, i, 1)
	case op == 0x81: // group1 rm, imm32
		return modRMLen(code, i, 4)
	case op == 0xC6: // mov rm8, imm8
		return modRMLen(code, i, 1)
	case op == 0xC7: // mov rm, imm32
		return modRMLen(code, i, 4)
	case op == 0xE8 || op == 0xE9:
		return 0, fmt.Errorf("relative call/jmp")
	case op == 0xEB || (op >= 0x70 && op <= 0x7F):
		return 0, fmt.Errorf("relative branch")
	case op == 0x0F:
		if i >= len(code) {
			return 0, fmt.Errorf("truncated 0F")
		}
		op2 := code[i]
		i++
		switch {
		case op2 == 0x1F: // multi-byte nop
			return modRMLen(code, i, 0)
		case op2 >= 0x80 && op2 <= 0x8F:
			return 0, fmt.Errorf("relative jcc")
		case op2 == 0x05: // syscall
			return i, nil
		default:
			return 0, fmt.Errorf("opcode 0F %02X", op2)
		}
	default:
		return 0, fmt.Errorf("opcode %02X", op)
	}
}

// modRMLen finishes decoding an instruction whose opcode is followed by a
// ModRM byte plus imm immediate bytes, rejecting RIP-relative addressing.
func modRMLen(code []byte, i, imm int) (int, error) {
	if i >= len(code) {
		return 0, fmt.Errorf("truncated modrm")
	}
	modrm := code[i]
	i++
	mod := modrm >> 6
	rm := modrm & 7

	if mod != 3 && rm == 4 { // SIB byte
		if i >= len(code) {
			return 0, fmt.Errorf("truncated sib")
		}
		sib := code[i]
		i++
		if mod == 0 && sib&7 == 5 {
			i += 4 // disp32 with no base
		}
	}
	switch mod {
	case 0:
		if rm == 5 {
			return 0, fmt.Errorf("rip-relative operand")
		}
	case 1:
		i++ // disp8
	case 2:
		i += 4 // disp32
	}
	return i + imm, nil
}
