package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mrdg/polysynth/audio"
	"github.com/mrdg/polysynth/dub"
	"gitlab.com/gomidi/midi/v2"
)

const defaultVelocity = 100

type command struct {
	name  string
	usage string
	run   func(*env, []dub.Node) (dub.Node, error)
	arity int // -n means len(args) must be >= n
}

var commands []command

func init() {
	commands = []command{
		{"on", "on key [velocity]", onCommand, -1},
		{"off", "off key", offCommand, 1},
		{"bend", "bend amount (-1 to 1)", bendCommand, 1},
		{"raw", "raw status [data1 [data2]]", rawCommand, -1},
		{"set", "set property value", setCommand, 2},
		{"get", "get property", getCommand, 1},
		{"preset", "preset name", presetCommand, 1},
		{"load-wave", "load-wave file", loadWaveCommand, 1},
		{"voices", "voices", voicesCommand, 0},
		{"panic", "panic", panicCommand, 0},
		{"help", "help", helpCommand, 0},
	}
}

func (e *env) send(msg []byte) {
	e.engine.Send(0, msg)
}

func onCommand(env *env, args []dub.Node) (dub.Node, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("too many arguments")
	}
	var key int
	vel := defaultVelocity
	if err := readArgs(args[:1], &key); err != nil {
		return nil, err
	}
	if len(args) == 2 {
		if err := readArgs(args[1:], &vel); err != nil {
			return nil, err
		}
	}
	msg, err := noteOnMessage(env.channel, key, vel)
	if err != nil {
		return nil, err
	}
	env.send(msg)
	return nil, nil
}

func offCommand(env *env, args []dub.Node) (dub.Node, error) {
	var key int
	if err := readArgs(args, &key); err != nil {
		return nil, err
	}
	msg, err := noteOffMessage(env.channel, key)
	if err != nil {
		return nil, err
	}
	env.send(msg)
	return nil, nil
}

func bendCommand(env *env, args []dub.Node) (dub.Node, error) {
	var amount float64
	if err := readArgs(args, &amount); err != nil {
		return nil, err
	}
	msg, err := bendMessage(env.channel, amount)
	if err != nil {
		return nil, err
	}
	env.send(msg)
	return nil, nil
}

func rawCommand(env *env, args []dub.Node) (dub.Node, error) {
	msg, err := rawMessage(args)
	if err != nil {
		return nil, err
	}
	env.send(msg)
	return nil, nil
}

func setCommand(env *env, args []dub.Node) (dub.Node, error) {
	var prop string
	if err := readArgs(args[:1], &prop); err != nil {
		return nil, err
	}
	switch v := args[1].(type) {
	case dub.Int:
		return nil, env.engine.Set(prop, int(v))
	case dub.Float:
		return nil, env.engine.Set(prop, float64(v))
	case dub.String:
		return nil, env.engine.Set(prop, string(v))
	case dub.Identifier:
		return nil, env.engine.Set(prop, string(v))
	default:
		return nil, fmt.Errorf("unsupported property type: %v", v)
	}
}

func getCommand(env *env, args []dub.Node) (dub.Node, error) {
	var prop string
	if err := readArgs(args, &prop); err != nil {
		return nil, err
	}
	v, err := env.engine.Get(prop)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case float64:
		return dub.Float(v), nil
	case string:
		return dub.String(v), nil
	case *audio.Wavetable:
		return dub.String(v.Name()), nil
	}
	return dub.String(fmt.Sprint(v)), nil
}

func presetCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	if err := audio.LoadPreset(name, env.engine); err != nil {
		return nil, fmt.Errorf("%w (have: %s)", err, strings.Join(audio.PresetNames(), ", "))
	}
	return nil, nil
}

func loadWaveCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	table, err := audio.LoadWavetable(file)
	if err != nil {
		return nil, err
	}
	if err := env.engine.Set(audio.PropOscTable, table); err != nil {
		return nil, err
	}
	return nil, env.engine.Set(audio.PropOscWave, "table")
}

func voicesCommand(env *env, args []dub.Node) (dub.Node, error) {
	var b strings.Builder
	renderVoices(env.engine.Snapshot(), &b)
	return dub.String(strings.TrimSuffix(b.String(), "\n")), nil
}

func panicCommand(env *env, args []dub.Node) (dub.Node, error) {
	env.engine.AllNotesOff()
	return nil, nil
}

func helpCommand(env *env, args []dub.Node) (dub.Node, error) {
	var lines []string
	for _, cmd := range commands {
		lines = append(lines, cmd.usage)
	}
	return dub.String(strings.Join(lines, "\n")), nil
}

func noteOnMessage(ch, key, vel int) (midi.Message, error) {
	if err := checkRange("channel", ch, 0, 15); err != nil {
		return nil, err
	}
	if err := checkRange("key", key, 0, 127); err != nil {
		return nil, err
	}
	if err := checkRange("velocity", vel, 0, 127); err != nil {
		return nil, err
	}
	return midi.NoteOn(uint8(ch), uint8(key), uint8(vel)), nil
}

func noteOffMessage(ch, key int) (midi.Message, error) {
	if err := checkRange("channel", ch, 0, 15); err != nil {
		return nil, err
	}
	if err := checkRange("key", key, 0, 127); err != nil {
		return nil, err
	}
	return midi.NoteOff(uint8(ch), uint8(key)), nil
}

// bendMessage maps amount in -1..1 onto the 14 bit pitch bend range.
func bendMessage(ch int, amount float64) (midi.Message, error) {
	if err := checkRange("channel", ch, 0, 15); err != nil {
		return nil, err
	}
	if amount < -1 || amount > 1 {
		return nil, fmt.Errorf("bend amount is not in range -1 - 1: %v", amount)
	}
	var v float64
	if amount < 0 {
		v = amount * 8192
	} else {
		v = amount * 8191
	}
	return midi.Pitchbend(uint8(ch), int16(math.Round(v))), nil
}

func rawMessage(args []dub.Node) ([]byte, error) {
	if len(args) > 3 {
		return nil, fmt.Errorf("a message has at most 3 bytes, got %d", len(args))
	}
	msg := make([]byte, len(args))
	for n, arg := range args {
		var b int
		if err := readArgs([]dub.Node{arg}, &b); err != nil {
			return nil, err
		}
		if err := checkRange("byte", b, 0, 255); err != nil {
			return nil, err
		}
		msg[n] = byte(b)
	}
	return msg, nil
}

func checkRange(name string, v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("%s is not in range %d - %d: %d", name, min, max, v)
	}
	return nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier, got %v", arg)
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Float:
				*p = float64(v)
			case dub.Int:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number, got %v", arg)
			}
		case *int:
			v, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer, got %v", arg)
			}
			*p = int(v)
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
