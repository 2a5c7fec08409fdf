package main

import "github.com/citesweep/citesweep/cmd"

func main() {
	cmd.Execute()
}
