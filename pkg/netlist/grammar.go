package netlist

import (
	"fmt"
	"strings"
)

type statementAST struct {
	Directive *directiveAST `parser:"  @@"`
	Element   *elementAST   `parser:"| @@"`
}

type directiveAST struct {
	Name string    `parser:"@Directive"`
	Args []*argAST `parser:"@@*"`
}

type elementAST struct {
	Name string    `parser:"@Ident"`
	Args []*argAST `parser:"@@*"`
}

type argAST struct {
	Probe *probeAST `parser:"  @@"`
	Param *paramAST `parser:"| @@"`
	Word  *string   `parser:"| @(Ident | Number)"`
}

// probeAST is an output reference such as V(out) or V(out,ref).
type probeAST struct {
	Kind  string   `parser:"@Ident \"(\""`
	Nodes []string `parser:"@(Ident | Number) ( \",\" @(Ident | Number) )* \")\""`
}

type paramAST struct {
	Key   string `parser:"@Ident \"=\""`
	Value string `parser:"@(Number | Ident)"`
}

func (a *argAST) String() string {
	switch {
	case a.Probe != nil:
		return fmt.Sprintf("%s(%s)", a.Probe.Kind, strings.Join(a.Probe.Nodes, ","))
	case a.Param != nil:
		return a.Param.Key + "=" + a.Param.Value
	case a.Word != nil:
		return *a.Word
	}
	return ""
}

// words returns the plain word arguments, failing on probes or params.
func words(args []*argAST) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a.Word == nil {
			return nil, fmt.Errorf("unexpected %q", a.String())
		}
		out = append(out, *a.Word)
	}
	return out, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
