package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Parse parses a single command. An empty input is an error.
func Parse(input string) (Command, error) {
	cmds, err := ParseAll(input)
	if err != nil {
		return Command{}, err
	}
	switch len(cmds) {
	case 0:
		return Command{}, fmt.Errorf("empty command")
	case 1:
		return cmds[0], nil
	}
	return Command{}, fmt.Errorf("expected one command, got %d", len(cmds))
}

// ParseAll parses a list of commands separated by semicolons or newlines.
// Blank lines and comments starting with # are skipped.
func ParseAll(input string) ([]Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) peek() token {
	t := p.next()
	p.pos--
	return t
}

func (p *parser) parse() ([]Command, error) {
	var cmds []Command
	for {
		switch p.peek().typ {
		case typeEOF:
			return cmds, nil
		case typeSemicolon:
			p.next()
			continue
		}
		cmd, err := p.command()
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
}

func (p *parser) command() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.peek(); token.typ != typeEOF && token.typ != typeSemicolon; token = p.peek() {
		p.next()
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			s, err := strconv.Unquote(token.text)
			if err != nil {
				return cmd, fmt.Errorf("invalid string at position %d: %w", token.pos, err)
			}
			arg = String(s)
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.ParseInt(token.text, 0, 64)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

func unexpected(t token) error {
	if t.typ == typeEOF {
		return fmt.Errorf("unexpected end of input")
	}
	return fmt.Errorf("unexpected %v %q at position %d", t.typ, t.text, t.pos)
}
