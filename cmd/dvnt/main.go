package main

import "github.com/scottbw/dvnt/internal/cli"

func main() {
	cli.Execute()
}
