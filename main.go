package main

import "github.com/Tiliavir/tick/cmd"

func main() {
	cmd.Execute()
}
