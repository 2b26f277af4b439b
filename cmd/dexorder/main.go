package main

import "github.com/quernali/goDexOrder/internal/cli"

func main() {
	cli.Execute()
}
