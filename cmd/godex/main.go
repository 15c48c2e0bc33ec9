package main

import "github.com/blacktop/go-dex/cmd/godex/cmd"

func main() {
	cmd.Execute()
}
