package cmds

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/queryaccel/parquetclip"
)

var fullDump *bool

func init() {
	fullDump = metaCmd.PersistentFlags().BoolP("full", "f", false, "Dump the complete footer structure")
	rootCmd.AddCommand(metaCmd)
}

var metaCmd = &cobra.Command{
	Use:   "meta file-name.parquet",
	Short: "Print the footer meta data of the parquet file",
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

		if *fullDump {
			spew.Dump(meta)
			return
		}

		createdBy := ""
		if meta.CreatedBy != nil {
			createdBy = *meta.CreatedBy
		}
		fmt.Printf("Version: %d\nCreated by: %s\nRows: %d\nRow groups: %d\n\n", meta.Version, createdBy, meta.NumRows, len(meta.RowGroups))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Row group", "Column", "Codec", "Compressed", "Uncompressed", "Data page offset", "Dict page offset"})
		for i, rg := range meta.RowGroups {
			for _, cc := range rg.Columns {
				md := cc.MetaData
				if md == nil {
					continue
				}
				dict := "-"
				if md.DictionaryPageOffset != nil {
					dict = fmt.Sprint(*md.DictionaryPageOffset)
				}
				table.Append([]string{
					fmt.Sprint(i),
					strings.Join(md.PathInSchema, "."),
					md.Codec.String(),
					fmt.Sprint(md.TotalCompressedSize),
					fmt.Sprint(md.TotalUncompressedSize),
					fmt.Sprint(md.DataPageOffset),
					dict,
				})
			}
		}
		table.Render()
	},
}
