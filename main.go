package main

import (
	"fmt"
	"os"

	"github.com/dibyendu2004/BrightPath/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		fmt.Fprintf(os.Stderr, "brightpath: %v\n", err)
		os.Exit(1)
	}
}
