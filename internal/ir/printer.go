package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// printInsn renders an instruction in assembly syntax: mnemonic, then
// destination, sources, payload, and branch targets.
func printInsn(i *Instruction) string {
	var parts []string
	if i.HasDest() {
		parts = append(parts, regName(i.Dest))
	}
	for _, s := range i.Srcs {
		parts = append(parts, regName(s))
	}
	switch i.Opcode.Payload() {
	case PayloadLiteral:
		parts = append(parts, strconv.FormatInt(i.Literal, 10))
	case PayloadString:
		parts = append(parts, strconv.Quote(i.Str))
	case PayloadType:
		if i.Type != nil {
			parts = append(parts, i.Type.Descriptor)
		}
	case PayloadField:
		if i.Field != nil {
			parts = append(parts, i.Field.String())
		}
	case PayloadMethod:
		if i.Method != nil {
			parts = append(parts, i.Method.String())
		}
	case PayloadData:
		if i.Data != nil {
			parts = append(parts, formatData(i.Data))
		}
	}
	for _, t := range i.Targets {
		parts = append(parts, "b"+strconv.Itoa(t))
	}
	if len(parts) == 0 {
		return i.Opcode.String()
	}
	return i.Opcode.String() + " " + strings.Join(parts, ", ")
}

func regName(r Register) string {
	if r == ResultRegister {
		return "vres"
	}
	return fmt.Sprintf("v%d", r)
}

func formatData(d *OpcodeData) string {
	var sb strings.Builder
	sb.WriteString("{")
	sb.WriteString(strconv.Itoa(d.Width))
	sb.WriteString(":")
	for i, e := range d.Elements {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatInt(e, 10))
	}
	sb.WriteString("}")
	return sb.String()
}
