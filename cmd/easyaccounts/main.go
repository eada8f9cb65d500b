package main

import (
	"os"

	"github.com/NiinoTM/EasyAccounts/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
