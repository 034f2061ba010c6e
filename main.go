package main

import "night-attendance-backend/cmd"

func main() {
	cmd.Execute()
}
