package cmd

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/netlist"
	"github.com/edp1096/toy-schematic/pkg/util"
)

func sortedNames(results map[string][]float64, keep func(string) bool) []string {
	var names []string
	for name := range results {
		if keep(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func printResults(w io.Writer, typ netlist.AnalysisType, results map[string][]float64) {
	switch typ {
	case netlist.AnalysisAC:
		printAC(w, results)
	case netlist.AnalysisOP:
		printOP(w, results)
	}
}

func printAC(w io.Writer, results map[string][]float64) {
	freqs := results["FREQ"]
	fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points):\n", len(freqs))
	fmt.Fprintln(w, "Frequency      Node Voltages (Magnitude/Phase)        Branch Currents (Magnitude/Phase)")
	fmt.Fprintln(w, "-----------------------------------------------------------------------------")

	bases := func(prefix string) []string {
		names := sortedNames(results, func(name string) bool {
			return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, "_MAG")
		})
		for i, name := range names {
			names[i] = strings.TrimSuffix(name, "_MAG")
		}
		return names
	}
	columns := append(bases("V("), bases("I(")...)

	for i, freq := range freqs {
		fmt.Fprintf(w, "%-13s", util.FormatFrequency(freq))
		for _, name := range columns {
			mag, phase := results[name+"_MAG"], results[name+"_PHASE"]
			if i < len(mag) && i < len(phase) {
				fmt.Fprintf(w, "%s  ", util.FormatMagnitudePhase(name, mag[i], phase[i]))
			}
		}
		fmt.Fprintln(w)
	}
}

func printOP(w io.Writer, results map[string][]float64) {
	fmt.Fprintln(w, "\nNode Voltages:")
	for _, name := range sortedNames(results, func(n string) bool { return strings.HasPrefix(n, "V(") }) {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "V"))
	}
	fmt.Fprintln(w, "\nBranch Currents:")
	for _, name := range sortedNames(results, func(n string) bool { return strings.HasPrefix(n, "I(") }) {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "A"))
	}
}

func printTransfer(w io.Writer, tf *analysis.TransferFunction) {
	fmt.Fprintln(w, "\nTransfer Function:")
	fmt.Fprintln(w, tf.String())

	gain := "inf"
	if !math.IsInf(tf.DCGain, 0) && !math.IsNaN(tf.DCGain) {
		gain = fmt.Sprintf("%.6g", tf.DCGain)
	}
	fmt.Fprintf(w, "DC gain: %s\n", gain)

	printRoots(w, "Poles", "p", tf.Poles)
	printRoots(w, "Zeros", "z", tf.Zeros)
}

// printRoots lists roots in rad/s with the natural frequency in Hz.
func printRoots(w io.Writer, title, prefix string, roots []complex128) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(roots))
	for i, r := range roots {
		hz := math.Hypot(real(r), imag(r)) / (2 * math.Pi)
		root := fmt.Sprintf("%g", real(r))
		if imag(r) != 0 {
			root = fmt.Sprintf("%g%+gj", real(r), imag(r))
		}
		fmt.Fprintf(w, "  %s%d = %s rad/s  (%s)\n", prefix, i+1, root, strings.TrimSpace(util.FormatFrequency(hz)))
	}
}
