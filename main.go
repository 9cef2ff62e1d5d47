package main

import "github.com/tinyfabulist/tinyfabulist/cmd"

func main() {
	cmd.Execute()
}
