package main

import "github.com/TheVeryDarkness/umake/cmd"

func main() {
	cmd.Execute()
}
