// Copyright © 2018 The ELPS authors

package main

import "github.com/iBelieve/rasp/cmd"

func main() {
	cmd.Execute()
}
