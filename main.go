package main

import (
	"fmt"
	"os"

	"SyncBoard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "syncboard:", err)
		os.Exit(1)
	}
}
