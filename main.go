package main

import "github.com/vispana/apppackage-client/cmd"

func main() {
	cmd.Execute()
}
