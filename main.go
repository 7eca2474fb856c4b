package main

import "github.com/andresmejia3/moodcam/cmd"

func main() {
	cmd.Execute()
}
