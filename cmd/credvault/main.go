package main

import (
	"github.com/awnumar/memguard"

	"github.com/vault-cli/credvault/internal/cli"
	"github.com/vault-cli/credvault/internal/util"
)

func main() {
	// Wipe protected memory on Ctrl-C as well as on a normal exit
	memguard.CatchInterrupt()

	err := cli.Execute()
	memguard.Purge()
	util.HandleError(err)
}
