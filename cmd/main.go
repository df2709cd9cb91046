package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if err != errReported {
			fmt.Fprintln(os.Stderr, "zmc:", err)
		}

		os.Exit(1)
	}
}
