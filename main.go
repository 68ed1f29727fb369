package main

import "algoquest/cmd"

func main() {
	cmd.Execute()
}
