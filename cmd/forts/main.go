package main

import "github.com/amterp/forts/internal/cli"

func main() {
	cli.Run()
}
