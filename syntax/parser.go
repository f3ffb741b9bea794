package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gleamtools/codecgen/errors"
)

// ParseError is a structured parse failure with source position context.
// Line numbers are 1-based, columns 0-based.
type ParseError struct {
	File    string
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
}

// Unwrap lets callers match parse failures with errors.Is(err, errors.ErrParse).
func (e *ParseError) Unwrap() error { return errors.ErrParse }

// ParseModule parses the declarations of one source file into a Module.
// Function and constant bodies are skipped; only imports, custom types,
// type aliases, and their attached attributes are modeled.
//
// logicalPath is the module path relative to the source root ("app/user");
// pkg is the owning package name from the manifest.
func ParseModule(file, src, logicalPath, pkg string) (*Module, error) {
	toks, err := tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	mod := &Module{
		Name:    BaseName(logicalPath),
		Package: pkg,
		Path:    logicalPath,
	}
	if err := p.parseTopLevel(mod); err != nil {
		return nil, err
	}
	return mod, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokUpName
	tokAttrComment // //@name(args) structured comment, text holds "name(args)"
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokColon
	tokDot
	tokEq
	tokAt
	tokHash
	tokArrow
	tokSlash
	tokOther // any other punctuation, preserved for body skipping
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func tokenize(file, src string) ([]token, error) {
	var toks []token
	line, col := 1, 0
	runes := []rune(src)
	i := 0

	emit := func(kind tokenKind, text string, l, c int) {
		toks = append(toks, token{kind: kind, text: text, line: l, col: c})
	}
	advance := func(n int) {
		for k := 0; k < n && i < len(runes); k++ {
			if runes[i] == '\n' {
				line++
				col = 0
			} else {
				col++
			}
			i++
		}
	}

	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			advance(1)

		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			// Comment to end of line. //@name(args) is a structured
			// attribute; everything else is discarded.
			startLine, startCol := line, col
			j := i
			for j < len(runes) && runes[j] != '\n' {
				j++
			}
			text := string(runes[i:j])
			body := strings.TrimPrefix(text, "//")
			body = strings.TrimPrefix(body, "/") // tolerate /// doc comments
			if strings.HasPrefix(body, "@") {
				emit(tokAttrComment, strings.TrimSpace(body[1:]), startLine, startCol)
			}
			advance(j - i)

		case r == '"':
			// String literal; consumed and discarded, they only appear in
			// skipped bodies and attribute arguments.
			startLine, startCol := line, col
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(runes) {
				return nil, &ParseError{File: file, Line: startLine, Col: startCol, Message: "unterminated string literal"}
			}
			emit(tokOther, string(runes[i:j+1]), startLine, startCol)
			advance(j + 1 - i)

		case unicode.IsLetter(r) || r == '_':
			startLine, startCol := line, col
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			word := string(runes[i:j])
			if unicode.IsUpper(r) {
				emit(tokUpName, word, startLine, startCol)
			} else {
				emit(tokIdent, word, startLine, startCol)
			}
			advance(j - i)

		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			emit(tokArrow, "->", line, col)
			advance(2)

		default:
			kind := tokOther
			switch r {
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			case '{':
				kind = tokLBrace
			case '}':
				kind = tokRBrace
			case '[':
				kind = tokLBracket
			case ']':
				kind = tokRBracket
			case ',':
				kind = tokComma
			case ':':
				kind = tokColon
			case '.':
				kind = tokDot
			case '=':
				kind = tokEq
			case '@':
				kind = tokAt
			case '#':
				kind = tokHash
			case '/':
				kind = tokSlash
			}
			emit(kind, string(r), line, col)
			advance(1)
		}
	}
	emit(tokEOF, "", line, col)
	return toks, nil
}

type parser struct {
	file    string
	toks    []token
	pos     int
	pending []Attribute
}

func (p *parser) peek() token    { return p.toks[p.pos] }
func (p *parser) next() token    { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) at(k tokenKind) bool { return p.toks[p.pos].kind == k }

func (p *parser) atKeyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == word
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &ParseError{File: p.file, Line: t.line, Col: t.col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != k {
		return t, p.errorf(t, "expected %s, found %q", what, t.text)
	}
	return t, nil
}

func (p *parser) parseTopLevel(mod *Module) error {
	for !p.at(tokEOF) {
		t := p.peek()
		switch {
		case t.kind == tokAttrComment:
			p.next()
			if attr, ok := parseAttributeText(t.text); ok {
				p.pending = append(p.pending, attr)
			}

		case t.kind == tokAt:
			if err := p.parseDecorator(); err != nil {
				return err
			}

		case p.atKeyword("import"):
			p.next()
			imp, err := p.parseImport()
			if err != nil {
				return err
			}
			mod.Imports = append(mod.Imports, imp)
			p.pending = nil

		case p.atKeyword("pub"):
			p.next()
			if err := p.parseDeclaration(mod, true); err != nil {
				return err
			}

		case p.atKeyword("type") || p.atKeyword("opaque"):
			if err := p.parseDeclaration(mod, false); err != nil {
				return err
			}

		case p.atKeyword("fn"):
			p.next()
			p.skipFunction()
			p.pending = nil

		case p.atKeyword("const"):
			p.next()
			p.skipLine()
			p.pending = nil

		default:
			// Unknown top-level token; skip it so one stray construct does
			// not abort the whole file.
			p.next()
		}
	}
	return nil
}

// parseDecorator handles the first-class attribute syntax `@name` or
// `@name(arg, ...)` on its own line preceding a definition. Unknown
// decorators (e.g. @deprecated, @external) are recorded too; the core only
// reacts to the names it knows.
func (p *parser) parseDecorator() error {
	p.next() // @
	nameTok := p.next()
	if nameTok.kind != tokIdent && nameTok.kind != tokUpName {
		return p.errorf(nameTok, "expected attribute name after @, found %q", nameTok.text)
	}
	attr := Attribute{Name: nameTok.text}
	if p.at(tokLParen) {
		p.next()
		depth := 1
		var arg strings.Builder
		for depth > 0 {
			t := p.next()
			switch t.kind {
			case tokEOF:
				return p.errorf(t, "unterminated attribute argument list")
			case tokLParen:
				depth++
				arg.WriteString(t.text)
			case tokRParen:
				depth--
				if depth > 0 {
					arg.WriteString(t.text)
				}
			case tokComma:
				if depth == 1 {
					attr.Args = append(attr.Args, strings.TrimSpace(arg.String()))
					arg.Reset()
				} else {
					arg.WriteString(t.text)
				}
			default:
				arg.WriteString(t.text)
			}
		}
		if s := strings.TrimSpace(arg.String()); s != "" {
			attr.Args = append(attr.Args, s)
		}
	}
	p.pending = append(p.pending, attr)
	return nil
}

// parseAttributeText normalizes the comment form "name(a, b)" or "name".
func parseAttributeText(text string) (Attribute, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Attribute{}, false
	}
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return Attribute{Name: text}, true
	}
	name := strings.TrimSpace(text[:open])
	rest := strings.TrimSuffix(strings.TrimSpace(text[open+1:]), ")")
	attr := Attribute{Name: name}
	for _, part := range strings.Split(rest, ",") {
		if s := strings.TrimSpace(part); s != "" {
			attr.Args = append(attr.Args, s)
		}
	}
	return attr, name != ""
}

func (p *parser) parseImport() (Import, error) {
	var imp Import
	seg, err := p.expect(tokIdent, "module path")
	if err != nil {
		return imp, err
	}
	path := seg.text
	for p.at(tokSlash) {
		p.next()
		seg, err = p.expect(tokIdent, "module path segment")
		if err != nil {
			return imp, err
		}
		path += "/" + seg.text
	}
	imp.Path = path

	// import a/b.{Foo, Bar}
	if p.at(tokDot) {
		p.next()
		if _, err := p.expect(tokLBrace, "{"); err != nil {
			return imp, err
		}
		for !p.at(tokRBrace) {
			t := p.next()
			switch t.kind {
			case tokUpName, tokIdent:
				imp.Unqualified = append(imp.Unqualified, t.text)
			case tokComma:
			case tokEOF:
				return imp, p.errorf(t, "unterminated unqualified import list")
			default:
				return imp, p.errorf(t, "unexpected %q in unqualified import list", t.text)
			}
		}
		p.next() // }
	}

	if p.atKeyword("as") {
		p.next()
		alias, err := p.expect(tokIdent, "import alias")
		if err != nil {
			return imp, err
		}
		imp.Alias = alias.text
	}
	return imp, nil
}

func (p *parser) parseDeclaration(mod *Module, public bool) error {
	opaque := false
	if p.atKeyword("opaque") {
		p.next()
		opaque = true
	}
	switch {
	case p.atKeyword("type"):
		p.next()
		return p.parseTypeDecl(mod, public, opaque)
	case p.atKeyword("fn"):
		p.next()
		p.skipFunction()
		p.pending = nil
		return nil
	case p.atKeyword("const"):
		p.next()
		p.skipLine()
		p.pending = nil
		return nil
	default:
		// `pub` followed by something unmodeled; skip the keyword.
		p.next()
		return nil
	}
}

func (p *parser) parseTypeDecl(mod *Module, public, opaque bool) error {
	nameTok, err := p.expect(tokUpName, "type name")
	if err != nil {
		return err
	}

	var params []string
	if p.at(tokLParen) {
		p.next()
		for !p.at(tokRParen) {
			t := p.next()
			switch t.kind {
			case tokIdent:
				params = append(params, t.text)
			case tokComma:
			case tokEOF:
				return p.errorf(t, "unterminated type parameter list")
			default:
				return p.errorf(t, "expected type parameter, found %q", t.text)
			}
		}
		p.next() // )
	}

	attrs := p.pending
	p.pending = nil

	switch {
	case p.at(tokEq):
		p.next()
		aliased, err := p.parseTypeRef()
		if err != nil {
			return err
		}
		mod.Aliases = append(mod.Aliases, TypeAlias{
			Name:       nameTok.text,
			Public:     public,
			Params:     params,
			Aliased:    aliased,
			Attributes: attrs,
		})
		return nil

	case p.at(tokLBrace):
		p.next()
		variants, err := p.parseVariants()
		if err != nil {
			return err
		}
		if len(variants) == 0 {
			return p.errorf(nameTok, "type %s has no variants", nameTok.text)
		}
		mod.CustomTypes = append(mod.CustomTypes, CustomType{
			Name:       nameTok.text,
			Public:     public,
			Opaque:     opaque,
			Params:     params,
			Variants:   variants,
			Attributes: attrs,
		})
		return nil

	default:
		return p.errorf(p.peek(), "expected = or { after type %s", nameTok.text)
	}
}

func (p *parser) parseVariants() ([]Variant, error) {
	var variants []Variant
	for !p.at(tokRBrace) {
		t := p.peek()
		if t.kind == tokEOF {
			return nil, p.errorf(t, "unterminated type body")
		}
		if t.kind != tokUpName {
			return nil, p.errorf(t, "expected variant name, found %q", t.text)
		}
		p.next()
		v := Variant{Name: t.text}
		if p.at(tokLParen) {
			p.next()
			fields, err := p.parseFields()
			if err != nil {
				return nil, err
			}
			v.Fields = fields
		}
		variants = append(variants, v)
	}
	p.next() // }
	return variants, nil
}

func (p *parser) parseFields() ([]Field, error) {
	var fields []Field
	for !p.at(tokRParen) {
		t := p.peek()
		if t.kind == tokEOF {
			return nil, p.errorf(t, "unterminated field list")
		}
		if t.kind == tokComma {
			p.next()
			continue
		}
		// `label: Type` when an ident is immediately followed by a colon;
		// otherwise a positional field whose type starts here.
		if t.kind == tokIdent && p.toks[p.pos+1].kind == tokColon {
			p.next()
			p.next()
			ref, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Label: t.text, Type: ref})
			continue
		}
		ref, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Type: ref})
	}
	p.next() // )
	return fields, nil
}

func (p *parser) parseTypeRef() (TypeRef, error) {
	t := p.peek()
	switch {
	case t.kind == tokHash:
		p.next()
		if _, err := p.expect(tokLParen, "( after #"); err != nil {
			return nil, err
		}
		var elems []TypeRef
		for !p.at(tokRParen) {
			if p.at(tokComma) {
				p.next()
				continue
			}
			e, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		p.next() // )
		return Tuple{Elems: elems}, nil

	case t.kind == tokIdent && t.text == "fn":
		p.next()
		if _, err := p.expect(tokLParen, "( after fn"); err != nil {
			return nil, err
		}
		var params []TypeRef
		for !p.at(tokRParen) {
			if p.at(tokComma) {
				p.next()
				continue
			}
			param, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
		p.next() // )
		if _, err := p.expect(tokArrow, "-> in function type"); err != nil {
			return nil, err
		}
		ret, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		return Fn{Params: params, Return: ret}, nil

	case t.kind == tokUpName:
		p.next()
		args, err := p.parseTypeArgs()
		if err != nil {
			return nil, err
		}
		return Named{Name: t.text, Args: args}, nil

	case t.kind == tokIdent:
		if strings.HasPrefix(t.text, "_") {
			p.next()
			return Hole{Name: strings.TrimPrefix(t.text, "_")}, nil
		}
		// Qualified reference `mod.Type` when followed by a dot and an
		// uppercase name; a bare lowercase name is a type variable.
		if p.pos+2 < len(p.toks) && p.toks[p.pos+1].kind == tokDot && p.toks[p.pos+2].kind == tokUpName {
			p.next()
			p.next()
			nameTok := p.next()
			args, err := p.parseTypeArgs()
			if err != nil {
				return nil, err
			}
			return Named{Qualifier: t.text, Name: nameTok.text, Args: args}, nil
		}
		p.next()
		return Var{Name: t.text}, nil

	default:
		return nil, p.errorf(t, "expected type, found %q", t.text)
	}
}

func (p *parser) parseTypeArgs() ([]TypeRef, error) {
	if !p.at(tokLParen) {
		return nil, nil
	}
	p.next()
	var args []TypeRef
	for !p.at(tokRParen) {
		if p.at(tokComma) {
			p.next()
			continue
		}
		a, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	p.next() // )
	return args, nil
}

// skipFunction consumes a function declaration whose body we do not model:
// everything up to and including its balanced top-level braces.
func (p *parser) skipFunction() {
	depth := 0
	seenBrace := false
	for !p.at(tokEOF) {
		t := p.next()
		switch t.kind {
		case tokLBrace:
			depth++
			seenBrace = true
		case tokRBrace:
			depth--
		}
		if seenBrace && depth == 0 {
			return
		}
	}
}

// skipLine consumes tokens through the end of the current source line,
// following any open brackets across lines. Used for const declarations.
func (p *parser) skipLine() {
	if p.at(tokEOF) {
		return
	}
	line := p.peek().line
	depth := 0
	for !p.at(tokEOF) {
		t := p.peek()
		if depth == 0 && t.line > line {
			return
		}
		switch t.kind {
		case tokLParen, tokLBrace, tokLBracket:
			depth++
		case tokRParen, tokRBrace, tokRBracket:
			depth--
		}
		line = t.line
		p.next()
	}
}
