package main

import "github.com/ethanolivertroy/dep-usage/cmd"

func main() {
	cmd.Execute()
}
