package main

import "github.com/Agileeo/nft-client/internal/cli"

func main() {
	cli.Execute()
}
