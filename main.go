package main

import "github.com/vstanchev/gh-metrics/cmd"

func main() {
	cmd.Execute()
}
