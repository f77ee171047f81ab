package main

import "github.com/faldi95/supplynet/cmd"

func main() {
	cmd.Execute()
}
