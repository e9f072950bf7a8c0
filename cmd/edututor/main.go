package main

import "edututor/internal/cli"

func main() {
	cli.Execute()
}
