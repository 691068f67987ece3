package main

import "github.com/LuisEduardoPedra/painelAtividades/internal/cli"

func main() {
	cli.Execute()
}
