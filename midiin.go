package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func listMIDIInputs(w io.Writer) error {
	ins, err := drivers.Ins()
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		fmt.Fprintln(w, "no MIDI inputs")
	}
	for _, in := range ins {
		fmt.Fprintf(w, "%d: %s\n", in.Number(), in.String())
	}
	return nil
}

// matchPort prefers an exact name match and falls back to the only port
// whose name contains name.
func matchPort(ports []string, name string) (int, error) {
	var matches []int
	for n, port := range ports {
		if port == name {
			return n, nil
		}
		if strings.Contains(strings.ToLower(port), strings.ToLower(name)) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return -1, fmt.Errorf("MIDI input %q not found", name)
	case 1:
		return matches[0], nil
	}
	var names []string
	for _, n := range matches {
		names = append(names, ports[n])
	}
	return -1, fmt.Errorf("MIDI input %q is ambiguous: %s", name, strings.Join(names, ", "))
}

type sender interface {
	Send(offset int, msg []byte)
}

// listenMIDI forwards channel messages from the named input port to dest.
// The returned function stops listening and closes the port.
func listenMIDI(name string, dest sender) (func(), error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, in := range ins {
		ports = append(ports, in.String())
	}
	n, err := matchPort(ports, name)
	if err != nil {
		return nil, err
	}
	in := ins[n]
	if err := in.Open(); err != nil {
		return nil, err
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if b := msg.Bytes(); isChannelMessage(b) {
			dest.Send(0, b)
		}
	}, midi.HandleError(func(err error) {
		log.Printf("midi: %s: %v", in, err)
	}))
	if err != nil {
		in.Close()
		return nil, err
	}
	log.Printf("midi: listening on %s", in)
	return func() {
		stop()
		in.Close()
		drivers.Close()
	}, nil
}

// isChannelMessage filters out system messages such as clock and sysex.
func isChannelMessage(b []byte) bool {
	return len(b) > 0 && b[0] >= 0x80 && b[0] < 0xf0
}
