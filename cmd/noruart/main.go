package main

import "github.com/console-repair-tools/noruart/cmd/noruart/cmd"

func main() {
	cmd.Execute()
}
