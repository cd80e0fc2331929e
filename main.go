package main

import "github.com/KaramelBytes/ai-reporter/cmd"

func main() {
	cmd.Execute()
}
