package main

import "github.com/sadopc/logbook/internal/cli"

func main() {
	cli.Execute()
}
