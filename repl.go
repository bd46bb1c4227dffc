package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/polysynth/audio"
	"github.com/mrdg/polysynth/dub"
)

type env struct {
	engine  *audio.Engine
	channel int
	out     io.Writer
}

func newEnv(engine *audio.Engine, out io.Writer) *env {
	return &env{engine: engine, out: out}
}

func (e *env) eval(input string) (dub.Node, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return nil, err
	}
	return e.exec(command)
}

func (e *env) exec(command dub.Command) (dub.Node, error) {
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

// runScript evaluates every command in file and stops at the first error.
func runScript(e *env, file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	cmds, err := dub.ParseAll(string(b))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	for _, cmd := range cmds {
		if _, err := e.exec(cmd); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func repl(env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(env.engine.Keys()),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Println(err)
		} else if result != nil {
			fmt.Println(result)
		}
	}
}

func completer(props []string) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		var args []readline.PrefixCompleterInterface
		switch cmd.name {
		case "set", "get":
			for _, key := range props {
				args = append(args, readline.PcItem(key))
			}
		case "preset":
			for _, name := range audio.PresetNames() {
				args = append(args, readline.PcItem(name))
			}
		}
		items = append(items, readline.PcItem(cmd.name, args...))
	}
	return readline.NewPrefixCompleter(items...)
}
