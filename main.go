package main

import "github.com/kozaktomas/adproof/cmd"

func main() {
	cmd.Execute()
}
