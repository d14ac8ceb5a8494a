// cmd/main.go is the application entry point.
package main

import (
	"fmt"
	"os"

	"github.com/Shivanand-hulikatti/meetapp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "meetapp:", err)
		os.Exit(1)
	}
}
