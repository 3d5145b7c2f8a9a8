// Command menagerie runs zoo scenarios from the command line.
package main

import "github.com/mesh-intelligence/menagerie/internal/cli"

func main() {
	cli.Execute()
}
