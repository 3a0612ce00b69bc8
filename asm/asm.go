// Package asm assembles textual tiervm programs into instruction sequences.
// The engine itself never parses text; this package is the collaborator that
// produces the decoded form its load contract consumes.
//
// Source is line oriented: one instruction per line, "name:" lines define
// labels, and "#" starts a comment. Operands may be integers, floats,
// double-quoted strings, label references, or bare words (taken as strings).
package asm

import (
	"strconv"
	"strings"

	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/errz"
	"github.com/tiervm/tiervm/object"
	"github.com/tiervm/tiervm/op"
)

// Assemble translates source text into a program. Labels are resolved in a
// first pass, instructions generated in a second. Operand arity is not
// checked here; the engine's load step validates it.
func Assemble(source string) ([]bytecode.Instruction, error) {
	type line struct {
		number int
		text   string
	}

	var lines []line
	for i, raw := range strings.Split(source, "\n") {
		text := raw
		if idx := strings.Index(text, "#"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lines = append(lines, line{number: i + 1, text: text})
	}

	// First pass: collect label addresses.
	labels := map[string]int{}
	address := 0
	for _, ln := range lines {
		if strings.HasSuffix(ln.text, ":") {
			label := strings.TrimSpace(strings.TrimSuffix(ln.text, ":"))
			if _, exists := labels[label]; exists {
				return nil, errz.Newf(errz.ErrInvalidInstruction,
					"duplicate label %q (line %d)", label, ln.number)
			}
			labels[label] = address
			continue
		}
		address++
	}

	// Second pass: generate instructions.
	var program []bytecode.Instruction
	for _, ln := range lines {
		if strings.HasSuffix(ln.text, ":") {
			continue
		}
		fields := strings.Fields(ln.text)
		code, ok := op.Lookup(strings.ToUpper(fields[0]))
		if !ok {
			return nil, errz.Newf(errz.ErrInvalidInstruction,
				"unknown opcode %q (line %d)", fields[0], ln.number)
		}
		operands := make([]object.Object, 0, len(fields)-1)
		for _, field := range fields[1:] {
			operands = append(operands, parseOperand(strings.TrimSuffix(field, ","), labels))
		}
		program = append(program, bytecode.New(code, operands...))
	}
	return program, nil
}

func parseOperand(text string, labels map[string]int) object.Object {
	if addr, ok := labels[text]; ok {
		return object.NewInt(int64(addr))
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return object.NewInt(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return object.NewFloat(f)
	}
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return object.NewString(text[1 : len(text)-1])
	}
	return object.NewString(text)
}
