// Package main is the entry point of the cloud-drive server.
// It sets up and starts the server by calling initialization functions from the internal package.
package main

import (
	"cloud-drive/internal"
)

func main() {
	internal.Init()
}
