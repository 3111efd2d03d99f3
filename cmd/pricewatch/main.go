package main

import "github.com/Houeta/pricewatch/cmd/pricewatch/commands"

// main is the entry point of the application.
func main() {
	commands.Execute()
}
