package main

import "github.com/stitts-dev/tennis-sim/internal/cli"

func main() {
	cli.Execute()
}
