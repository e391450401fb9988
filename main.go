// The main package for the quoteminer executable.
package main

import "github.com/insightmine/reddit-quote-miner/cmd"

func main() {
	cmd.Execute()
}
