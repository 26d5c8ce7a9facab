package main

import "github.com/oshokin/aid-escrow/cmd/escrow-server/cmd"

func main() {
	cmd.Execute()
}
