package main

import "github.com/papapumpkin/powermap/cmd"

func main() {
	cmd.Execute()
}
