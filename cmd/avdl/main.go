// Command avdl is the AVDL parser CLI entry point.
package main

import "github.com/thomasrohde/avdl/internal/cmd"

func main() {
	cmd.Execute()
}
