package main

import "leadpipe/cli"

func main() {
	cli.Execute()
}
