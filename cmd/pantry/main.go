// Command pantry keeps small personal collections on local storage.
package main

import "github.com/mesh-intelligence/pantry/internal/cli"

func main() {
	cli.Execute()
}
