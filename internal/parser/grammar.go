package parser

import "github.com/alecthomas/participle/v2/lexer"

// The grammar mirrors the printed form: field declarations up front, then
// methods of labeled blocks, one instruction per line.

type fileNode struct {
	Decls []*topDecl `EOL* @@*`
}

type topDecl struct {
	Field  *fieldDecl  `( @@`
	Method *methodDecl `| @@ ) EOL*`
}

type fieldDecl struct {
	Volatile bool   `"field" @"volatile"?`
	Ref      string `@FieldRef EOL`
}

type methodDecl struct {
	Name   string       `"method" @Ident`
	Regs   uint32       `"(" "regs" @Integer ")"`
	Blocks []*blockDecl `"{" EOL+ @@+ "}"`
}

type blockDecl struct {
	Label string      `@Ident ":" EOL+`
	Insns []*insnDecl `@@*`
}

type insnDecl struct {
	Pos      lexer.Position
	Mnemonic string     `@Ident`
	Operands []*operand `( @@ ( "," @@ )* )? EOL+`
}

type operand struct {
	Pos    lexer.Position
	Reg    *string  `  @Register`
	Method *string  `| @MethodRef`
	Field  *string  `| @FieldRef`
	Type   *string  `| @TypeDesc`
	Str    *string  `| @String`
	Num    *int64   `| @Integer`
	Data   *dataLit `| @@`
	Label  *string  `| @Ident`
}

type dataLit struct {
	Width    int     `"{" @Integer ":"`
	Elements []int64 `( @Integer ( "," @Integer )* )? "}"`
}
