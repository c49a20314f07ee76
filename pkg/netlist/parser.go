package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedElement   = errors.New("unsupported element type")
	ErrUnsupportedDirective = errors.New("unsupported directive")
)

// logicalLine is a statement after joining "+" continuations, tagged with
// the source line it started on.
type logicalLine struct {
	no   int
	text string
}

func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var lines []logicalLine
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Empty line or full-line comment
		if len(line) == 0 || strings.HasPrefix(line, "*") {
			continue
		}

		// Line continue
		if strings.HasPrefix(line, "+") {
			if len(lines) == 0 {
				return nil, &ParseError{Line: lineNo, Err: errors.New("continuation without a statement")}
			}
			lines[len(lines)-1].text += " " + strings.TrimSpace(line[1:])
			continue
		}

		lines = append(lines, logicalLine{no: lineNo, text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	for _, l := range lines {
		done, err := parseLine(netlistData, l.text)
		if err != nil {
			return nil, &ParseError{Line: l.no, Err: err}
		}
		if done {
			break
		}
	}

	return netlistData, nil
}

// parseLine handles one statement and reports whether it was .end.
func parseLine(netlistData *NetlistData, line string) (bool, error) {
	stmt, err := statementParser.ParseString("", line)
	if err != nil {
		return false, err
	}

	if stmt.Directive != nil {
		return parseDotOperator(netlistData, stmt.Directive)
	}

	element, err := parseElement(stmt.Element)
	if err != nil {
		return false, err
	}
	if _, dup := netlistData.Element(element.Name); dup {
		return false, fmt.Errorf("duplicate element %s", element.Name)
	}
	netlistData.Elements = append(netlistData.Elements, *element)
	return false, nil
}

func parseDotOperator(netlistData *NetlistData, d *directiveAST) (bool, error) {
	switch strings.ToLower(d.Name) {
	case ".end":
		return true, nil

	case ".op":
		if len(d.Args) != 0 {
			return false, fmt.Errorf(".op takes no arguments")
		}
		netlistData.Analyses = append(netlistData.Analyses, AnalysisOP)

	case ".ac":
		fields, err := words(d.Args)
		if err != nil {
			return false, fmt.Errorf(".ac: %w", err)
		}
		if len(fields) != 4 {
			return false, fmt.Errorf(".ac requires: DEC|OCT|LIN points fstart fstop")
		}
		param, err := parseACParams(fields)
		if err != nil {
			return false, err
		}
		netlistData.ACParam = param
		netlistData.Analyses = append(netlistData.Analyses, AnalysisAC)

	case ".tf":
		param, err := parseTFParams(d.Args)
		if err != nil {
			return false, err
		}
		netlistData.TFParam = param
		netlistData.Analyses = append(netlistData.Analyses, AnalysisTF)

	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedDirective, d.Name)
	}

	return false, nil
}

func parseACParams(fields []string) (ACParam, error) {
	param := ACParam{Sweep: strings.ToUpper(fields[0])}
	switch param.Sweep {
	case "DEC", "OCT", "LIN":
	default:
		return param, fmt.Errorf(".ac: unknown sweep type %s", fields[0])
	}

	points, err := ParseValue(fields[1])
	if err != nil {
		return param, fmt.Errorf(".ac points: %w", err)
	}
	param.Points = int(points)
	if param.Points < 1 || float64(param.Points) != points {
		return param, fmt.Errorf(".ac: points must be a positive integer, got %s", fields[1])
	}

	if param.FStart, err = ParseValue(fields[2]); err != nil {
		return param, fmt.Errorf(".ac fstart: %w", err)
	}
	if param.FStop, err = ParseValue(fields[3]); err != nil {
		return param, fmt.Errorf(".ac fstop: %w", err)
	}
	if param.FStart <= 0 || param.FStop < param.FStart {
		return param, fmt.Errorf(".ac: need 0 < fstart <= fstop")
	}
	return param, nil
}

func parseTFParams(args []*argAST) (TFParam, error) {
	if len(args) != 2 || args[0].Probe == nil || args[1].Word == nil {
		return TFParam{}, fmt.Errorf(".tf requires: V(out[,ref]) source")
	}

	probe := args[0].Probe
	if !equalFold(probe.Kind, "V") || len(probe.Nodes) > 2 {
		return TFParam{}, fmt.Errorf(".tf: output must be V(node) or V(node,ref), got %s", args[0])
	}

	param := TFParam{Output: probe.Nodes[0], Input: *args[1].Word}
	if len(probe.Nodes) == 2 {
		param.Reference = probe.Nodes[1]
	}
	return param, nil
}

func parseElement(e *elementAST) (*Element, error) {
	element := &Element{
		Type:   strings.ToUpper(e.Name[:1]),
		Name:   e.Name,
		Params: make(map[string]string),
	}

	switch element.Type {
	case "R", "L", "C":
		return parsePassive(element, e.Args)
	case "V":
		return parseVoltageSource(element, e.Args)
	case "X":
		return parseOpAmp(element, e.Args)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedElement, e.Name)
}

func parsePassive(element *Element, args []*argAST) (*Element, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%s requires: n1 n2 value", element.Name)
	}
	fields, err := words(args[:3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", element.Name, err)
	}

	element.Nodes = fields[:2]
	if element.Value, err = ParseValue(fields[2]); err != nil {
		return nil, fmt.Errorf("%s: %w", element.Name, err)
	}
	if element.Value <= 0 {
		return nil, fmt.Errorf("%s: value must be positive", element.Name)
	}

	for _, a := range args[3:] {
		if a.Param == nil {
			return nil, fmt.Errorf("%s: unexpected %q", element.Name, a.String())
		}
		element.Params[strings.ToLower(a.Param.Key)] = a.Param.Value
	}
	return element, nil
}

// parseVoltageSource reads n+ n- followed by either a bare DC value or any
// of "DC v" and "AC mag [phase]".
func parseVoltageSource(element *Element, args []*argAST) (*Element, error) {
	fields, err := words(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", element.Name, err)
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("%s requires: n+ n- [DC v] [AC mag [phase]]", element.Name)
	}
	element.Nodes = fields[:2]
	rest := fields[2:]

	if len(rest) == 1 {
		if element.Value, err = ParseValue(rest[0]); err != nil {
			return nil, fmt.Errorf("%s: %w", element.Name, err)
		}
		element.Params["dc"] = rest[0]
		return element, nil
	}

	for i := 0; i < len(rest); {
		switch strings.ToUpper(rest[i]) {
		case "DC":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("%s: DC needs a value", element.Name)
			}
			if element.Value, err = ParseValue(rest[i+1]); err != nil {
				return nil, fmt.Errorf("%s: %w", element.Name, err)
			}
			element.Params["dc"] = rest[i+1]
			i += 2

		case "AC":
			if i+1 >= len(rest) {
				return nil, fmt.Errorf("%s: AC needs a magnitude", element.Name)
			}
			if _, err = ParseValue(rest[i+1]); err != nil {
				return nil, fmt.Errorf("%s: AC magnitude: %w", element.Name, err)
			}
			element.Params["ac"] = rest[i+1]
			i += 2
			if i < len(rest) {
				if _, perr := ParseValue(rest[i]); perr == nil {
					element.Params["phase"] = rest[i]
					i++
				}
			}

		default:
			return nil, fmt.Errorf("%s: unexpected %q", element.Name, rest[i])
		}
	}
	return element, nil
}

func parseOpAmp(element *Element, args []*argAST) (*Element, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("%s requires: in+ in- out OPAMP [gain=value]", element.Name)
	}
	fields, err := words(args[:4])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", element.Name, err)
	}
	if !equalFold(fields[3], "OPAMP") {
		return nil, fmt.Errorf("%s: unknown subcircuit %s", element.Name, fields[3])
	}
	element.Nodes = fields[:3]
	element.Params["model"] = "OPAMP"

	for _, a := range args[4:] {
		if a.Param == nil || !equalFold(a.Param.Key, "gain") {
			return nil, fmt.Errorf("%s: unexpected %q", element.Name, a.String())
		}
		if element.Value, err = ParseValue(a.Param.Value); err != nil {
			return nil, fmt.Errorf("%s: gain: %w", element.Name, err)
		}
		if element.Value < 0 {
			return nil, fmt.Errorf("%s: gain must not be negative", element.Name)
		}
	}
	return element, nil
}

// ParseProbe reads an output reference: a bare node name, V(node) or
// V(node,ref).
func ParseProbe(s string) (output, reference string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("empty probe")
	}
	if !strings.Contains(s, "(") {
		return s, "", nil
	}

	probe, err := probeParser.ParseString("", s)
	if err != nil {
		return "", "", fmt.Errorf("probe %q: %w", s, err)
	}
	if !equalFold(probe.Kind, "V") || len(probe.Nodes) > 2 {
		return "", "", fmt.Errorf("probe %q: want V(node) or V(node,ref)", s)
	}
	if len(probe.Nodes) == 2 {
		return probe.Nodes[0], probe.Nodes[1], nil
	}
	return probe.Nodes[0], "", nil
}
