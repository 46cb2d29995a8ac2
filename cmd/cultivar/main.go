package main

import "github.com/marshallshelly/cultivar/cmd/cultivar/commands"

func main() {
	commands.Execute()
}
