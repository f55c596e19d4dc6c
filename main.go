package main

import "github/chapool/go-ethwallet/cmd"

func main() {
	cmd.Execute()
}
