package main

import "heavymetal-notifier/cmd/notifier-cli/cmd"

func main() {
	cmd.Execute()
}
