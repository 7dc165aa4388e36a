// Package parser reads the textual assembly form of methods and lowers it
// into the IR and control-flow graph the optimizer runs on.
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"dexopt/internal/cfg"
	"dexopt/internal/ir"
)

// Program is one parsed compilation unit. Every ref in it is interned in
// Pool, and every declared field is known to Resolver.
type Program struct {
	Methods  []*cfg.Method
	Pool     *ir.RefPool
	Resolver *ir.MapResolver
}

var fileParser = participle.MustBuild[fileNode](
	participle.Lexer(dasmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(3),
)

// Parse parses source and lowers it. The path is used in positions only.
func Parse(path, source string) (*Program, error) {
	file, err := fileParser.ParseString(path, source)
	if err != nil {
		return nil, err
	}
	return lower(path, file)
}

// FormatError renders an error the way the CLI shows it. A participle
// parse error gets the offending line with a caret underneath; any other
// error, lowering errors included, is rendered as a single line.
func FormatError(src string, err error) string {
	pe, ok := err.(participle.Error)
	if !ok {
		return color.RedString("error: %s", err)
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return color.RedString("syntax error: %s", err)
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(0, pos.Column-1)) + "^"
	return fmt.Sprintf("%s\n%s\n%s\n",
		color.RedString("syntax error at %s:%d:%d: %s", pos.Filename, pos.Line, pos.Column, pe.Message()),
		line,
		color.New(color.Bold).Sprint(caret))
}

func lower(path string, file *fileNode) (*Program, error) {
	prog := &Program{
		Pool:     ir.NewRefPool(),
		Resolver: ir.NewMapResolver(),
	}
	for _, decl := range file.Decls {
		switch {
		case decl.Field != nil:
			ref, err := prog.Pool.ParseFieldRef(decl.Field.Ref)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			prog.Resolver.Declare(ref, decl.Field.Volatile)
		case decl.Method != nil:
			m, err := lowerMethod(prog, path, decl.Method)
			if err != nil {
				return nil, err
			}
			prog.Methods = append(prog.Methods, m)
		}
	}
	return prog, nil
}

func lowerMethod(prog *Program, path string, decl *methodDecl) (*cfg.Method, error) {
	g := cfg.New(decl.Regs)
	byLabel := make(map[string]*cfg.Block, len(decl.Blocks))
	for _, bd := range decl.Blocks {
		if _, dup := byLabel[bd.Label]; dup {
			return nil, fmt.Errorf("%s: duplicate block label %q in method %s", path, bd.Label, decl.Name)
		}
		byLabel[bd.Label] = g.NewBlock(bd.Label)
	}

	for _, bd := range decl.Blocks {
		block := byLabel[bd.Label]
		for _, id := range bd.Insns {
			insn, targets, err := lowerInsn(prog, id)
			if err != nil {
				return nil, err
			}
			for _, label := range targets {
				tb, ok := byLabel[label]
				if !ok {
					return nil, fmt.Errorf("%s:%d: unknown block label %q", path, id.Pos.Line, label)
				}
				insn.Targets = append(insn.Targets, tb.ID)
				g.AddEdge(block, tb)
			}
			block.Insns = append(block.Insns, insn)
		}
	}

	// Fallthrough edges for blocks that do not end in a terminator.
	blocks := g.Blocks()
	for i, b := range blocks {
		last := lastInsn(b)
		if last != nil && ir.IsTerminator(last.Opcode) {
			continue
		}
		if i+1 >= len(blocks) {
			return nil, fmt.Errorf("%s: method %s: block %s falls off the end", path, decl.Name, b.Label)
		}
		g.AddEdge(b, blocks[i+1])
	}

	return &cfg.Method{Name: decl.Name, Graph: g}, nil
}

func lastInsn(b *cfg.Block) *ir.Instruction {
	if len(b.Insns) == 0 {
		return nil
	}
	return b.Insns[len(b.Insns)-1]
}

// lowerInsn turns one parsed line into an instruction plus its raw target
// labels. Operand order is destination, sources, payload, targets.
func lowerInsn(prog *Program, decl *insnDecl) (*ir.Instruction, []string, error) {
	op, ok := ir.OpcodeByName(decl.Mnemonic)
	if !ok {
		return nil, nil, fmt.Errorf("%s:%d: unknown mnemonic %q", decl.Pos.Filename, decl.Pos.Line, decl.Mnemonic)
	}
	insn := &ir.Instruction{Opcode: op}
	fail := func(format string, args ...any) (*ir.Instruction, []string, error) {
		return nil, nil, fmt.Errorf("%s:%d: %s: %s",
			decl.Pos.Filename, decl.Pos.Line, decl.Mnemonic, fmt.Sprintf(format, args...))
	}

	var regs []ir.Register
	var labels []string
	payloadSeen := false
	for _, o := range decl.Operands {
		switch {
		case o.Reg != nil:
			var n uint32
			fmt.Sscanf(*o.Reg, "v%d", &n)
			regs = append(regs, ir.Register(n))
		case o.Label != nil:
			labels = append(labels, *o.Label)
		case o.Num != nil:
			if op.Payload() != ir.PayloadLiteral || payloadSeen {
				return fail("unexpected literal operand")
			}
			insn.Literal = *o.Num
			payloadSeen = true
		case o.Str != nil:
			if op.Payload() != ir.PayloadString || payloadSeen {
				return fail("unexpected string operand")
			}
			insn.Str = *o.Str
			payloadSeen = true
		case o.Type != nil:
			if op.Payload() != ir.PayloadType || payloadSeen {
				return fail("unexpected type operand")
			}
			insn.Type = prog.Pool.Type(*o.Type)
			payloadSeen = true
		case o.Field != nil:
			if op.Payload() != ir.PayloadField || payloadSeen {
				return fail("unexpected field operand")
			}
			ref, err := prog.Pool.ParseFieldRef(*o.Field)
			if err != nil {
				return fail("%s", err)
			}
			insn.Field = ref
			payloadSeen = true
		case o.Method != nil:
			if op.Payload() != ir.PayloadMethod || payloadSeen {
				return fail("unexpected method operand")
			}
			ref, err := prog.Pool.ParseMethodRef(*o.Method)
			if err != nil {
				return fail("%s", err)
			}
			insn.Method = ref
			payloadSeen = true
		case o.Data != nil:
			if op.Payload() != ir.PayloadData || payloadSeen {
				return fail("unexpected data operand")
			}
			insn.Data = &ir.OpcodeData{Width: o.Data.Width, Elements: o.Data.Elements}
			payloadSeen = true
		}
	}

	if op.Payload() != ir.PayloadNone && !payloadSeen {
		return fail("missing %s operand", payloadName(op.Payload()))
	}
	if op.HasDest() {
		if len(regs) == 0 {
			return fail("missing destination register")
		}
		insn.Dest, regs = regs[0], regs[1:]
	}
	if want := op.SrcCount(); want >= 0 && len(regs) != want {
		return fail("want %d source registers, have %d", want, len(regs))
	}
	insn.Srcs = regs
	if len(labels) != op.LabelCount() {
		return fail("want %d branch targets, have %d", op.LabelCount(), len(labels))
	}
	return insn, labels, nil
}

func payloadName(k ir.PayloadKind) string {
	switch k {
	case ir.PayloadLiteral:
		return "literal"
	case ir.PayloadString:
		return "string"
	case ir.PayloadType:
		return "type"
	case ir.PayloadField:
		return "field"
	case ir.PayloadMethod:
		return "method"
	case ir.PayloadData:
		return "data"
	}
	return "payload"
}
