package main

import (
	"os"

	"github.com/unkn0wn-root/gitacache/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
