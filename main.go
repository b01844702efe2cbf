package main

import "femgen/cmd"

func main() {
	cmd.Execute()
}
