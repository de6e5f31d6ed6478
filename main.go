package main

import "github.com/KaramelBytes/agriassist-cli/cmd"

func main() {
	cmd.Execute()
}
