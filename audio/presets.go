package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"pad": {
		PropEnvAttack:  0.8,
		PropEnvPeak:    0.9,
		PropEnvDecay:   1.2,
		PropEnvSustain: 0.7,
		PropEnvRelease: 2.5,
		PropOscWave:    "triangle",
	},
	"pluck": {
		PropEnvAttack:  0.002,
		PropEnvPeak:    1.0,
		PropEnvDecay:   0.3,
		PropEnvSustain: 0.,
		PropEnvRelease: 0.15,
		PropOscWave:    "saw",
	},
	"organ": {
		PropEnvAttack:  0.01,
		PropEnvPeak:    0.8,
		PropEnvDecay:   0.01,
		PropEnvSustain: 0.8,
		PropEnvRelease: 0.05,
		PropOscWave:    "square",
	},
	"keys": {
		PropEnvAttack:  0.005,
		PropEnvPeak:    1.0,
		PropEnvDecay:   0.8,
		PropEnvSustain: 0.4,
		PropEnvRelease: 0.4,
		PropOscWave:    "sine",
	},
}

func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	for k, v := range p {
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func PresetNames() []string {
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
