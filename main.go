package main

import "github.com/notargets/gostokes/cmd"

func main() {
	cmd.Execute()
}
