package scenario

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Spans are lexed as single tokens so "-5: -5:" cannot be read as "-5:-5".
var scnLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Span", Pattern: `-?\d*:-?\d*`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type file struct {
	Statements []*statement `parser:"@@*"`
}

type statement struct {
	Pos lexer.Position

	Grid    *pair    `parser:"  'grid' @@"`
	Home    *pair    `parser:"| 'home' @@"`
	Setting *setting `parser:"| @@"`
	Fill    *fill    `parser:"| @@"`
}

type pair struct {
	A int `parser:"@Int"`
	B int `parser:"@Int"`
}

type setting struct {
	Key   string `parser:"@('robots'|'threshold'|'recharge'|'capacity'|'cost'|'rate')"`
	Value int    `parser:"@Int"`
}

type fill struct {
	Kind string `parser:"@('dirty'|'obstacle'|'clean')"`
	Rows string `parser:"@(Span|Int)"`
	Cols string `parser:"@(Span|Int)"`
}

var parser = participle.MustBuild[file](
	participle.Lexer(scnLexer),
	participle.Elide("Comment", "Whitespace"),
)
