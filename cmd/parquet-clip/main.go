package main

import "github.com/queryaccel/parquetclip/cmd/parquet-clip/cmds"

func main() {
	cmds.Execute()
}
