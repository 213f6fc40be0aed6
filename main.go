package main

import "github.com/lepinkainen/bookpedia/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
