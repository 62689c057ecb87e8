package main

import "github.com/funvibe/boundstore/pkg/cli"

func main() {
	cli.Run()
}
