package main

import "github.com/johnny111272/grib-getter/cmd"

func main() {
	cmd.Execute()
}
