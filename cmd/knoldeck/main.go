package main

import "github.com/conorfennell/knoldeck/cmd/knoldeck/root"

func main() {
	root.Execute()
}
