package main

import "github.com/edp1096/toy-schematic/cmd/schematic/cmd"

func main() {
	cmd.Execute()
}
