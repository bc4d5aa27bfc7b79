package main

import "github.com/miditape/miditape/cmd"

func main() {
	cmd.Execute()
}
