package main

import (
	"storefront-service/internal/cmd"
)

func main() {
	cmd.Execute()
}
