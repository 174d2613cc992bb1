package main

import "github.com/tefa-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
