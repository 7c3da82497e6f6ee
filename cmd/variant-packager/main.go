package main

import "variant-packager/internal/cli"

func main() {
	cli.Execute()
}
