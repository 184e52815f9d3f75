package main

import "github.com/Hilla44/Ubuntu-Requests/internal/cli"

func main() {
	cli.Execute()
}
