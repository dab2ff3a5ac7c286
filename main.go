package main

import "github.com/hsbacot/livesearch/cmd"

func main() {
	cmd.Execute()
}
