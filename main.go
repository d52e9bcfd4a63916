package main

import (
	"fmt"
	"os"

	"github.com/microsoft/python-language-server-sub014/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
