package main

import "github.com/oshokin/aid-escrow/cmd/escrow-cli/cmd"

func main() {
	cmd.Execute()
}
