package main

import "github.com/jeycentre/care-center-backend/cmd"

func main() {
	cmd.Execute()
}
