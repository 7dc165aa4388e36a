package cfg

import (
	"fmt"
	"strings"
)

// Print renders a method back into assembly syntax, one block per label.
func Print(m *Method) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "method %s (regs %d) {\n", m.Name, m.Graph.RegCount())
	// Labels are normalized to block IDs so branch targets print as the
	// labels they reference.
	for _, b := range m.Graph.Blocks() {
		fmt.Fprintf(&sb, "b%d:\n", b.ID)
		for _, insn := range b.Insns {
			fmt.Fprintf(&sb, "  %s\n", insn)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
