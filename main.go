package main

import "PlaylistFM/cmd"

func main() {
	cmd.Execute()
}
