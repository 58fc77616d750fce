package main

import "to8emu/cmd"

func main() {
	cmd.Execute()
}
