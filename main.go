package main

import (
	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
