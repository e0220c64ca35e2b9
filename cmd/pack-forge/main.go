package main

import "github.com/okarpov/pack-forge/cmd/pack-forge/cmd"

func main() {
	cmd.Execute()
}
