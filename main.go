// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"os"

	"github.com/stsysd/bathtiles/cmd"
)

func main() {
	root := cmd.NewRootCmd(cmd.DefaultDeps())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
