package main

import "github.com/kerlouan/goswapd/internal/cli"

func main() {
	cli.Execute()
}
