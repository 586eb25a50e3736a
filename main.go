package main

import "github.com/agubarev/orgtree/cmd"

func main() {
	cmd.Execute()
}
