package main

import (
	"github.com/sayedabdulkarim/message-scheduler/cmd"
)

func main() {
	cmd.Execute()
}
