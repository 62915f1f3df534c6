package main

import "github.com/nmhoang23/rotauth/internal/cli"

func main() {
	cli.Execute()
}
