package main

import (
	"os"

	thinkbookcmder "github.com/thinkbooklabs/thinkbook/cmd/thinkbook"
)

func main() {
	cmd := thinkbookcmder.NewThinkbookCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
