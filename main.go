package main

import "github.com/vietddude/taxocache/internal/cli"

func main() {
	cli.Execute()
}
