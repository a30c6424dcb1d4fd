package main

import "github.com/davarch/pipeline-bot/cmd/pipeline-bot/cli"

func main() {
	cli.Execute()
}
