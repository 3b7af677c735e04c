package main

import "github.com/forPelevin/pausecut/internal/cli"

func main() {
	cli.Main()
}
