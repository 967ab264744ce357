package cmds

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/queryaccel/parquetclip"
)

var (
	clipColumns *[]string
	clipOutput  *string
	clipDryRun  *bool
)

func init() {
	clipColumns = clipCmd.PersistentFlags().StringSliceP("columns", "c", nil, "Dotted column paths to keep, keeps all columns if empty")
	clipOutput = clipCmd.PersistentFlags().StringP("output", "o", "", "Target file to write the clipped parquet file to")
	clipDryRun = clipCmd.PersistentFlags().BoolP("dry-run", "n", false, "Only print the exact size of the clipped file")
	rootCmd.AddCommand(clipCmd)
}

var clipCmd = &cobra.Command{
	Use:   "clip file-name.parquet",
	Short: "Write a new parquet file containing only the selected columns",
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

		ctx := context.Background()

		meta, err := parquetclip.ReadFooterWithContext(ctx, fl)
		if err != nil {
			log.Fatalf("Reading footer failed: %q", err)
		}

		layout, err := parquetclip.ClipLayoutWithContext(ctx, meta, *clipColumns, nil)
		if err != nil {
			log.Fatalf("Clipping layout failed: %q", err)
		}

		size, err := layout.OutputSize(ctx)
		if err != nil {
			log.Fatalf("Sizing output failed: %q", err)
		}

		if *clipDryRun {
			fmt.Printf("%d row groups, %d leaf columns, output size %d bytes\n", len(layout.RowGroups()), layout.NumLeafColumns(), size)
			return
		}

		if *clipOutput == "" {
			log.Fatal("No output file given, use --output or --dry-run")
		}

		buf, err := parquetclip.Reconstruct(ctx, fl, layout)
		if err != nil {
			log.Fatalf("Reconstructing file failed: %q", err)
		}

		if err := os.WriteFile(*clipOutput, buf, 0644); err != nil {
			log.Fatalf("Writing output file failed: %q", err)
		}

		fmt.Printf("Wrote %d bytes to %s\n", len(buf), *clipOutput)
	},
}
