package main

import "github.com/ev-1233/Blackjac-chip-counter/internal/cli"

func main() {
	cli.Execute()
}
