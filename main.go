package main

import "testament/cmd"

func main() {
	cmd.Execute()
}
