package main

import "github.com/josephlewis42/plsh/cmd"

func main() {
	cmd.Execute()
}
