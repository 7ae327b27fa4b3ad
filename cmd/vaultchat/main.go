package main

import (
	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
