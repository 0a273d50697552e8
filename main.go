package main

import "rank-sync/cmd"

func main() {
	cmd.Execute()
}
