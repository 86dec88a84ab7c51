package main

import "github.com/philipparndt/goweldx/internal/cmd"

func main() {
	cmd.Parse()
}
