package main

import (
	"fmt"
	"os"

	"github.com/Ilia01/ghcpi/internal/app"
	"github.com/Ilia01/ghcpi/internal/utils"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s %s\n", utils.Red("Error:"), err)
		os.Exit(app.ExitCode(err))
	}
}
