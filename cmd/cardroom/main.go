package main

import (
	"github.com/cardroom/cardroom/internal/cli"
)

func main() {
	cli.Execute()
}
