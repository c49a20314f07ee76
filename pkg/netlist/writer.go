package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Write renders the deck in the format Parse reads.
func Write(w io.Writer, data *NetlistData) error {
	bw := bufio.NewWriter(w)

	title := data.Title
	if title == "" {
		title = "untitled"
	}
	fmt.Fprintf(bw, "* %s\n", title)

	for _, e := range data.Elements {
		line, err := FormatElement(e)
		if err != nil {
			return err
		}
		fmt.Fprintln(bw, line)
	}

	for _, a := range data.Analyses {
		switch a {
		case AnalysisOP:
			fmt.Fprintln(bw, ".op")
		case AnalysisAC:
			p := data.ACParam
			fmt.Fprintf(bw, ".ac %s %d %s %s\n", p.Sweep, p.Points, FormatValue(p.FStart), FormatValue(p.FStop))
		case AnalysisTF:
			p := data.TFParam
			out := p.Output
			if p.Reference != "" {
				out += "," + p.Reference
			}
			fmt.Fprintf(bw, ".tf V(%s) %s\n", out, p.Input)
		}
	}
	fmt.Fprintln(bw, ".end")

	return bw.Flush()
}

func FormatElement(e Element) (string, error) {
	var sb strings.Builder
	sb.WriteString(e.Name)
	for _, n := range e.Nodes {
		sb.WriteString(" " + n)
	}

	switch e.Type {
	case "R", "L", "C":
		sb.WriteString(" " + FormatValue(e.Value))

	case "V":
		ac, hasAC := e.Params["ac"]
		if _, hasDC := e.Params["dc"]; hasDC || e.Value != 0 || !hasAC {
			fmt.Fprintf(&sb, " DC %s", FormatValue(e.Value))
		}
		if hasAC {
			fmt.Fprintf(&sb, " AC %s", ac)
			if phase, ok := e.Params["phase"]; ok {
				sb.WriteString(" " + phase)
			}
		}

	case "X":
		sb.WriteString(" OPAMP")
		if e.Value != 0 {
			fmt.Fprintf(&sb, " gain=%s", FormatValue(e.Value))
		}

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedElement, e.Name)
	}

	return sb.String(), nil
}
