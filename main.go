package main

import "northflake/cmd"

func main() {
	cmd.Execute()
}
