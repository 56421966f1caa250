package main

import "framefit/cmd"

func main() {
	cmd.Execute()
}
