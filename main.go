package main

import "github.com/Ethernal-Tech/peggy-orchestrator/cli"

func main() {
	cli.NewRootCommand().Execute()
}
