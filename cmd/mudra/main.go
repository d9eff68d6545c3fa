// Package main is the entry point for the mudra CLI.
//
// Usage:
//
//	mudra [flags] [command]
//
// Commands:
//
//	(none)   - Interactive menu: collect, train, live, exit
//	collect  - Record labeled hand samples from the camera
//	train    - Train the gesture model on the dataset
//	live     - Recognize gestures from the camera and speak them
//	history  - Show recorded training runs and collection sessions
//	tray     - Menu-bar front end
//	config   - Show or create the configuration file
package main

import (
	"fmt"
	"os"

	"github.com/ayusman/mudra/cmd/mudra/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
