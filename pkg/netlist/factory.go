package netlist

import (
	"fmt"

	"github.com/edp1096/toy-schematic/pkg/device"
)

func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		r := device.NewResistor(elem.Name, elem.Nodes, elem.Value)
		if tc1, ok := elem.Params["tc1"]; ok {
			v, err := ParseValue(tc1)
			if err != nil {
				return nil, fmt.Errorf("invalid tc1: %w", err)
			}
			r.Tc1 = v
		}
		if tc2, ok := elem.Params["tc2"]; ok {
			v, err := ParseValue(tc2)
			if err != nil {
				return nil, fmt.Errorf("invalid tc2: %w", err)
			}
			r.Tc2 = v
		}
		return r, nil

	case "L":
		return device.NewInductor(elem.Name, elem.Nodes, elem.Value), nil

	case "C":
		return device.NewCapacitor(elem.Name, elem.Nodes, elem.Value), nil

	case "V":
		mag, phase := 0.0, 0.0
		if ac, ok := elem.Params["ac"]; ok {
			v, err := ParseValue(ac)
			if err != nil {
				return nil, fmt.Errorf("invalid AC magnitude: %w", err)
			}
			mag = v
		}
		if p, ok := elem.Params["phase"]; ok {
			v, err := ParseValue(p)
			if err != nil {
				return nil, fmt.Errorf("invalid AC phase: %w", err)
			}
			phase = v
		}
		return device.NewACVoltageSource(elem.Name, elem.Nodes, elem.Value, mag, phase), nil

	case "X":
		if len(elem.Nodes) != 3 {
			return nil, fmt.Errorf("op-amp %s: requires in+ in- out", elem.Name)
		}
		return device.NewOpAmp(elem.Name, elem.Nodes, elem.Value), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedElement, elem.Type)
}
