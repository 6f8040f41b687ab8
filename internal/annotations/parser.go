package annotations

import (
	stderrors "errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/toyz/relay/internal/errors"
)

// annotationAST is the participle grammar for
//
//	//relay::<kind> [positional...] [-Option[=value]...]
type annotationAST struct {
	Kind string    `parser:"Prefix @Word"`
	Args []*argAST `parser:"@@*"`
}

type argAST struct {
	Option *optionAST `parser:"  @@"`
	Value  *valueAST  `parser:"| @@"`
}

type optionAST struct {
	Pos   lexer.Position
	Name  string    `parser:"@Option"`
	Value *valueAST `parser:"( Eq @@ )?"`
}

type valueAST struct {
	Quoted *string `parser:"  @String"`
	Word   *string `parser:"| @Word"`
}

func (v *valueAST) String() string {
	if v.Quoted != nil {
		return *v.Quoted
	}
	return *v.Word
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*relay::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Option", Pattern: `-[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Word", Pattern: `[^\s="]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser turns annotation comments into validated Annotations.
type Parser struct {
	grammar *participle.Parser[annotationAST]
	schemas *Registry
}

// NewParser creates a parser validating against schemas. A nil registry
// skips validation.
func NewParser(schemas *Registry) *Parser {
	return &Parser{
		grammar: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		schemas: schemas,
	}
}

// IsAnnotation reports whether comment is a relay annotation.
func IsAnnotation(comment string) bool {
	body, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	return ok && strings.HasPrefix(strings.TrimSpace(body), Prefix)
}

// Parse parses a single comment line found at loc.
func (p *Parser) Parse(comment string, loc errors.SourceLocation) (*Annotation, error) {
	comment = strings.TrimSpace(comment)
	ast, err := p.grammar.ParseString(loc.File, comment)
	if err != nil {
		var perr participle.Error
		if stderrors.As(err, &perr) {
			loc.Column += perr.Position().Column - 1
			err = stderrors.New(perr.Message())
		}
		return nil, errors.NewSyntaxError(comment, loc, err)
	}

	kind, err := ParseKind(ast.Kind)
	if err != nil {
		return nil, errors.NewSyntaxError(comment, loc, err)
	}

	a := &Annotation{
		Kind:     kind,
		Options:  make(map[string]string),
		Location: loc,
		Raw:      comment,
	}
	for _, arg := range ast.Args {
		if arg.Value != nil {
			a.Args = append(a.Args, arg.Value.String())
			continue
		}
		name := strings.TrimPrefix(arg.Option.Name, "-")
		if _, dup := a.Options[name]; dup {
			optLoc := loc
			optLoc.Column += arg.Option.Pos.Column - 1
			return nil, errors.NewValidationError(name, "duplicate option -"+name, optLoc)
		}
		value := "true"
		if arg.Option.Value != nil {
			value = arg.Option.Value.String()
		}
		a.Options[name] = value
	}

	if p.schemas != nil {
		if err := p.schemas.Validate(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}
