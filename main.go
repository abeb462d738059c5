package main

import "ragrouter/cmd"

func main() {
	cmd.Execute()
}
