package main

import (
	"fmt"
	"os"

	"github.com/mrdg/polysynth/audio"
	"github.com/mrdg/polysynth/dub"
)

func loadScore(file string) (*audio.Score, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	score, err := parseScore(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return score, nil
}

// parseScore reads a score written in the command language. Note commands
// are placed at the current time, which `wait seconds` moves forward and
// `at seconds` sets.
//
//	on 60 100; on 64 100
//	wait 0.5
//	off 60; off 64
func parseScore(input string) (*audio.Score, error) {
	cmds, err := dub.ParseAll(input)
	if err != nil {
		return nil, err
	}
	var (
		score audio.Score
		now   float64
	)
	for _, cmd := range cmds {
		var msg []byte
		var err error
		switch args := cmd.Args; cmd.Name {
		case "wait", "at":
			var t float64
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: want 1 argument, got %d", cmd.Name, len(args))
			}
			if err := readArgs(args, &t); err != nil {
				return nil, fmt.Errorf("%s: %w", cmd.Name, err)
			}
			if t < 0 {
				return nil, fmt.Errorf("%s: negative time: %v", cmd.Name, t)
			}
			if cmd.Name == "wait" {
				now += t
			} else {
				now = t
			}
			continue
		case "on":
			key, vel := 0, defaultVelocity
			switch len(args) {
			case 1:
				err = readArgs(args, &key)
			case 2:
				err = readArgs(args, &key, &vel)
			default:
				err = fmt.Errorf("want 1 or 2 arguments, got %d", len(args))
			}
			if err == nil {
				msg, err = noteOnMessage(0, key, vel)
			}
		case "off":
			var key int
			if err = readArgs(args, &key); err == nil {
				msg, err = noteOffMessage(0, key)
			}
		case "bend":
			var amount float64
			if err = readArgs(args, &amount); err == nil {
				msg, err = bendMessage(0, amount)
			}
		case "raw":
			msg, err = rawMessage(args)
		default:
			return nil, fmt.Errorf("unknown score command: %s", cmd.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd.Name, err)
		}
		score.Add(now, msg)
	}
	return &score, nil
}
