package main

import "github.com/john/themer/internal/cli"

func main() {
	cli.Execute()
}
