package main

import "github.com/vkadlec/photogate/cmd"

func main() {
	cmd.Execute()
}
