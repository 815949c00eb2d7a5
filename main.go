package main

import "github.com/andiamooltre/oltreweb/internal/cmd"

func main() {
	cmd.Execute()
}
