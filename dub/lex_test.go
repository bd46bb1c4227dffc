package dub

import "testing"

func TestLexer(t *testing.T) {
	type test struct {
		input  string
		expect []token
	}
	tests := []test{
		{
			input: "on 60 100",
			expect: []token{
				token{typ: typeIdentifier, text: "on"},
				token{typ: typeInt, text: "60"},
				token{typ: typeInt, text: "100"},
				token{typ: typeEOF},
			},
		},
		{
			input: "set env.attack 0.5",
			expect: []token{
				token{typ: typeIdentifier, text: "set"},
				token{typ: typeIdentifier, text: "env.attack"},
				token{typ: typeFloat, text: "0.5"},
				token{typ: typeEOF},
			},
		},
		{
			input: "raw 0x90 0x3c 127",
			expect: []token{
				token{typ: typeIdentifier, text: "raw"},
				token{typ: typeInt, text: "0x90"},
				token{typ: typeInt, text: "0x3c"},
				token{typ: typeInt, text: "127"},
				token{typ: typeEOF},
			},
		},
		{
			input: "1.0",
			expect: []token{
				token{typ: typeFloat, text: "1.0"},
				token{typ: typeEOF},
			},
		},
		{
			input: "-1.",
			expect: []token{
				token{typ: typeFloat, text: "-1."},
				token{typ: typeEOF},
			},
		},
		{
			input: "-.1",
			expect: []token{
				token{typ: typeFloat, text: "-.1"},
				token{typ: typeEOF},
			},
		},
		{
			input: `command "this is a string" 1`,
			expect: []token{
				token{typ: typeIdentifier, text: "command"},
				token{typ: typeString, text: `"this is a string"`},
				token{typ: typeInt, text: "1"},
				token{typ: typeEOF},
			},
		},
		{
			input: "on 60; off 60 # done\nwait 1",
			expect: []token{
				token{typ: typeIdentifier, text: "on"},
				token{typ: typeInt, text: "60"},
				token{typ: typeSemicolon, text: ";"},
				token{typ: typeIdentifier, text: "off"},
				token{typ: typeInt, text: "60"},
				token{typ: typeSemicolon, text: "\n"},
				token{typ: typeIdentifier, text: "wait"},
				token{typ: typeInt, text: "1"},
				token{typ: typeEOF},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		tokens, err := lex(test.input)
		if err != nil {
			t.Errorf("unexpected lex error: %v", err)
			continue
		}
		if len(tokens) != len(test.expect) {
			t.Fatalf("token mismatch: \nwant: %+v, \ngot:  %+v", test.expect, tokens)
		}
		for i, got := range tokens {
			want := test.expect[i]
			if want.typ != got.typ {
				t.Errorf("wrong type: want %v, got %v", want, got)
			}
			if want.text != got.text {
				t.Errorf("wrong text: want %v, got %v", want, got)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{
		"a -",
		"a .-",
		"a 0x",
		"a 12b",
		`load "unterminated`,
		"on 60 + 1",
	} {
		_, err := lex(input)
		if err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
