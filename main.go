package main

import "github.com/droidcli/droidcli/cmd"

func main() {
	cmd.Execute()
}
