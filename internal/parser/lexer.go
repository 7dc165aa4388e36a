package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Newlines terminate instructions, so only horizontal whitespace and
// comments are elided. Mnemonics, labels, and keywords are lowercase
// identifiers; the uppercase-leading rules pick out descriptors first.
var dasmLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "Whitespace", Pattern: `[ \t]+`},

		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Register", Pattern: `v[0-9]+`},

		// Lcom/Foo;.bar:(II)I
		{Name: "MethodRef", Pattern: `L[A-Za-z0-9_/$]*;\.[A-Za-z_<][A-Za-z0-9_>]*:\([^)]*\)[^\s,]+`},
		// Lcom/Foo;.f:I
		{Name: "FieldRef", Pattern: `L[A-Za-z0-9_/$]*;\.[A-Za-z_][A-Za-z0-9_]*:[^\s,()]+`},
		// Lcom/Foo; or [I or [[Lcom/Foo;
		{Name: "TypeDesc", Pattern: `\[+(L[A-Za-z0-9_/$]*;|[ZBCSIJFD])|L[A-Za-z0-9_/$]*;|[ZBCSIJFD]\b`},

		{Name: "Ident", Pattern: `[a-z_][a-z0-9_]*([-/][a-z0-9_]+)*`},
		{Name: "Integer", Pattern: `-?(0x[0-9a-fA-F]+|[0-9]+)`},
		{Name: "Punct", Pattern: `[{}():,]`},
	},
})
