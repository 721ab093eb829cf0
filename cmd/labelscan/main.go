package main

import "label-scanner/cmd/labelscan/cmd"

func main() {
	cmd.Execute()
}
