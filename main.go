package main

import "github.com/RigelNana/cinexnema/cmd"

func main() {
	cmd.Execute()
}
