package main

import "github.com/i474232898/apod-api/internal/cli"

func main() {
	cli.Execute()
}
