package netlist

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// deckLexer tokenizes one logical deck line. Continuations, full-line
// comments and the title are handled before lexing.
var deckLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Directive", Pattern: `\.[a-zA-Z]+`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?[a-zA-Z]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_#]*`},
	{Name: "Punct", Pattern: `[(),=]`},
})

var statementParser = participle.MustBuild[statementAST](
	participle.Lexer(deckLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

var probeParser = participle.MustBuild[probeAST](
	participle.Lexer(deckLexer),
	participle.Elide("Whitespace", "Comment"),
)
