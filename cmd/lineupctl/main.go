package main

import "github.com/riskibarqy/lineup-builder/internal/cli"

func main() {
	cli.Execute()
}
