package main

import "github.com/mcoot/wallwars-go/internal/cli"

func main() {
	cli.Execute()
}
