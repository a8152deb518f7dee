package main

import "github.com/mvp-joe/chalk-extract/internal/cli"

func main() {
	cli.Execute()
}
