package main

import "github.com/mantonx/moviecatalog/cmd/moviecatalog/commands"

func main() {
	commands.Execute()
}
