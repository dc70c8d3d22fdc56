package main

import "leadhunt-engine/internal/cli"

func main() {
	cli.Execute()
}
