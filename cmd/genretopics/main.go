package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	root := NewRootCmd()
	err := root.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "genretopics:", err)
		os.Exit(1)
	}
}
