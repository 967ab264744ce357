package cmds

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/queryaccel/parquetclip"
)

func init() {
	rootCmd.AddCommand(rowCountCmd)
}

var rowCountCmd = &cobra.Command{
	Use:   "rowcount file-name.parquet",
	Short: "Print the row count of the parquet file from its footer",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			os.Exit(1)
		}

		fl, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("Can not open the file: %q", err)
		}
		defer fl.Close()

		meta, err := parquetclip.ReadFooter(fl)
		if err != nil {
			log.Fatalf("Reading footer failed: %q", err)
		}

		fmt.Printf("Total RowCount: %d\n", meta.NumRows)
	},
}
