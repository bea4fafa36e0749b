package main

import "github.com/meanly/wordtrack/cmd"

func main() {
	cmd.Execute()
}
